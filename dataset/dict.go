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

// Dict is a bidirectional mapping between string labels and dense indices.
// Indices are assigned in insertion order, so building a Dict from the same
// label sequence always yields the same mapping.
type Dict struct {
	si map[string]int
	is []string
}

func NewDict(labels ...string) *Dict {
	d := &Dict{si: make(map[string]int, len(labels))}
	for _, label := range labels {
		d.Add(label)
	}
	return d
}

// Add inserts a label and returns its index. Existing labels keep their
// original index.
func (d *Dict) Add(label string) int {
	if id, ok := d.si[label]; ok {
		return id
	}
	id := len(d.is)
	d.si[label] = id
	d.is = append(d.is, label)
	return id
}

// Id returns the index of a label, or -1 if the label is unknown.
func (d *Dict) Id(label string) int {
	if id, ok := d.si[label]; ok {
		return id
	}
	return -1
}

// Label returns the label at an index.
func (d *Dict) Label(id int) (string, bool) {
	if id < 0 || id >= len(d.is) {
		return "", false
	}
	return d.is[id], true
}

// Labels returns all labels in index order. The returned slice is shared and
// must not be modified.
func (d *Dict) Labels() []string {
	return d.is
}

// Count returns the number of labels.
func (d *Dict) Count() int {
	return len(d.is)
}
