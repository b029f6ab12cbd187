// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package logdb

// create a table for events
const eventTableSchema = `
create table if not exists event (
	blockID blob(32),
	eventIndex integer,
	blockNumber integer,
	blockTime integer,
	txID blob(32),
	txOrigin blob(20),
	address blob(20),
	name text,
	topic0 blob(32),
	topic1 blob(32),
	topic2 blob(32),
	topic3 blob(32),
	topic4 blob(32),
	data blob,
	primary key (blockNumber, eventIndex)
);

CREATE INDEX if not exists eventBlockTimeIndex on event(blockTime);
CREATE INDEX if not exists eventAddressIndex on event(address);
CREATE INDEX if not exists eventNameIndex on event(name);
CREATE INDEX if not exists eventTxIDIndex on event(txID);
CREATE INDEX if not exists eventTopicIndex0 on event(topic0);
CREATE INDEX if not exists eventTopicIndex1 on event(topic1);
CREATE INDEX if not exists eventTopicIndex2 on event(topic2);
CREATE INDEX if not exists eventTopicIndex3 on event(topic3);
CREATE INDEX if not exists eventTopicIndex4 on event(topic4);
`

const eventColumns = "blockID, eventIndex, blockNumber, blockTime, txID, txOrigin, address, name, topic0, topic1, topic2, topic3, topic4, data"
