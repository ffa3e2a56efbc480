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

package parallel

import (
	"runtime"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestParallel(t *testing.T) {
	a := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	b := make([]int, len(a))
	err := Parallel(len(a), 4, func(workerId, jobId int) error {
		b[jobId] = a[jobId]
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParallelSequential(t *testing.T) {
	a := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	b := make([]int, len(a))
	err := Parallel(len(a), 1, func(workerId, jobId int) error {
		assert.Zero(t, workerId)
		b[jobId] = a[jobId]
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParallelError(t *testing.T) {
	err := Parallel(10, 4, func(workerId, jobId int) error {
		if jobId == 5 {
			return errors.New("broken job")
		}
		return nil
	})
	assert.Error(t, err)
}

func TestParallelErrorStopsProducer(t *testing.T) {
	before := runtime.NumGoroutine()
	// more jobs than the channel buffers, every worker fails immediately:
	// the producer must still terminate instead of blocking on the send
	err := Parallel(chanSize*4, 4, func(workerId, jobId int) error {
		return errors.New("broken job")
	})
	assert.Error(t, err)
	deadline := time.Now().Add(time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before)
}
