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

package encoding

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	m := [][]float64{{1, 2, 3}, {4, 5, 6}}
	err := WriteMatrix(buf, m)
	assert.NoError(t, err)
	decoded := [][]float64{make([]float64, 3), make([]float64, 3)}
	err = ReadMatrix(buf, decoded)
	assert.NoError(t, err)
	assert.Equal(t, m, decoded)
}

func TestString(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	err := WriteString(buf, "black lotus")
	assert.NoError(t, err)
	s, err := ReadString(buf)
	assert.NoError(t, err)
	assert.Equal(t, "black lotus", s)
}

func TestGob(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	labels := []string{"a", "b", "c"}
	err := WriteGob(buf, labels)
	assert.NoError(t, err)
	var decoded []string
	err = ReadGob(buf, &decoded)
	assert.NoError(t, err)
	assert.Equal(t, labels, decoded)
}
