// Copyright 2019 The go-xgp Authors
// This file is part of the go-xgp library.
//
// The go-xgp library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-xgp library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-xgp library. If not, see <http://www.gnu.org/licenses/>.

package pbft

import (
	"github.com/xugenping/go-xgp/common"
)

// MsgType enumerates the protocol phases.
type MsgType string

const (
	MsgRequest    MsgType = "REQUEST"
	MsgPrePrepare MsgType = "PRE_PREPARE"
	MsgPrepare    MsgType = "PREPARE"
	MsgCommit     MsgType = "COMMIT"
	MsgReply      MsgType = "REPLY"
)

// Request is the client request body. Its canonical sorted-key JSON form
// is what gets digested; the digest doubles as the request id.
type Request map[string]interface{}

// Digest returns the lowercase hex SHA-256 over the canonical form.
func (r Request) Digest() (string, error) {
	return common.CanonicalDigest(map[string]interface{}(r))
}

// Message is a protocol message. Request is only populated on
// PRE_PREPARE, Result only on REPLY.
type Message struct {
	Type      MsgType `json:"type"`
	View      uint64  `json:"view"`
	SeqNum    uint64  `json:"seq_num"`
	RequestID string  `json:"request_id"`
	Digest    string  `json:"digest,omitempty"`
	Request   Request `json:"request,omitempty"`
	Result    string  `json:"result,omitempty"`
}
