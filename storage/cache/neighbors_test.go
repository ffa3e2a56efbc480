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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeNeighborsCorrupted(t *testing.T) {
	neighbors := []Neighbor{{ItemId: "x", Correlation: 1.0}}
	blob, err := EncodeNeighbors(neighbors)
	assert.NoError(t, err)
	// truncated blob
	_, err = DecodeNeighbors(blob[:len(blob)-1])
	assert.Error(t, err)
	// trailing bytes
	_, err = DecodeNeighbors(append(blob, 0))
	assert.Error(t, err)
	// empty list round trip
	blob, err = EncodeNeighbors(nil)
	assert.NoError(t, err)
	decoded, err := DecodeNeighbors(blob)
	assert.NoError(t, err)
	assert.Empty(t, decoded)
}
