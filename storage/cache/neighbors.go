// Copyright 2023 voodoo Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"bytes"
	"encoding/binary"

	"github.com/juju/errors"
	"github.com/voodoo-io/voodoo/base/encoding"
)

// Neighbor is one entry of a cached neighbor list: another item and its
// correlation to the list's own item. The raw correlation matrix row is
// persisted as-is, so the self pair (correlation 1.0) is included and must
// be stripped by readers.
type Neighbor struct {
	ItemId      string
	Correlation float64
}

// EncodeNeighbors encodes a neighbor list into an opaque blob.
func EncodeNeighbors(neighbors []Neighbor) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := binary.Write(buf, binary.LittleEndian, int32(len(neighbors))); err != nil {
		return nil, errors.Trace(err)
	}
	for _, neighbor := range neighbors {
		if err := encoding.WriteString(buf, neighbor.ItemId); err != nil {
			return nil, errors.Trace(err)
		}
		if err := binary.Write(buf, binary.LittleEndian, neighbor.Correlation); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeNeighbors decodes a neighbor list from an opaque blob.
func DecodeNeighbors(data []byte) ([]Neighbor, error) {
	r := bytes.NewReader(data)
	var length int32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, errors.Trace(err)
	}
	neighbors := make([]Neighbor, length)
	for i := range neighbors {
		itemId, err := encoding.ReadString(r)
		if err != nil {
			return nil, errors.Trace(err)
		}
		neighbors[i].ItemId = itemId
		if err = binary.Read(r, binary.LittleEndian, &neighbors[i].Correlation); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if r.Len() > 0 {
		return nil, errors.New("trailing bytes in neighbor list")
	}
	return neighbors, nil
}
