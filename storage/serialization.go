// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MarshalVector serializes a vector as a varint length followed by
// fixed-width float32 components.
func MarshalVector(vector []float32) []byte {
	size := varint.Uint64.Size(uint64(len(vector)))
	for _, v := range vector {
		size += raw.Float32.Size(v)
	}
	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(len(vector)), buf)
	for _, v := range vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	return buf
}

// UnmarshalVector deserializes a vector written by MarshalVector.
func UnmarshalVector(data []byte) ([]float32, error) {
	length, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if remaining := uint64(len(data) - n); length > remaining/4 {
		return nil, fmt.Errorf("%w: want %d components, have %d bytes", ErrTruncatedData, length, remaining)
	}
	vector := make([]float32, length)
	for i := range vector {
		v, m, err := raw.Float32.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		vector[i] = v
		n += m
	}
	return vector, nil
}
