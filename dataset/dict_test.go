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

package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDict(t *testing.T) {
	d := NewDict("a", "b", "c")
	assert.Equal(t, 3, d.Count())
	assert.Equal(t, 0, d.Id("a"))
	assert.Equal(t, 2, d.Id("c"))
	assert.Equal(t, -1, d.Id("z"))
	// adding an existing label keeps its index
	assert.Equal(t, 1, d.Add("b"))
	assert.Equal(t, 3, d.Count())
	// adding a new label appends
	assert.Equal(t, 3, d.Add("d"))
	label, ok := d.Label(3)
	assert.True(t, ok)
	assert.Equal(t, "d", label)
	_, ok = d.Label(4)
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b", "c", "d"}, d.Labels())
}
