// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blocks

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/questforge/forge/api/restutil"
)

type Blocks struct {
	reader restutil.BlockReader
}

func New(reader restutil.BlockReader) *Blocks {
	return &Blocks{reader}
}

func (b *Blocks) handleGetBlock(w http.ResponseWriter, req *http.Request) error {
	revision, err := restutil.ParseRevision(mux.Vars(req)["revision"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "revision"))
	}
	expanded := req.URL.Query().Get("expanded")
	if expanded != "" && expanded != "false" && expanded != "true" {
		return restutil.BadRequest(errors.WithMessage(errors.New("should be boolean"), "expanded"))
	}

	blk, err := restutil.GetBlock(revision, b.reader)
	if err != nil {
		return err
	}
	if blk == nil {
		return restutil.WriteJSON(w, nil)
	}
	if expanded == "true" {
		return restutil.WriteJSON(w, blk)
	}
	return restutil.WriteJSON(w, &blk.Header)
}

func (b *Blocks) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/{revision}").
		Methods(http.MethodGet).
		Name("GET /blocks/{revision}").
		HandlerFunc(restutil.WrapHandlerFunc(b.handleGetBlock))
}
