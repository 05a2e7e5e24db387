// Copyright 2024 Dolthub, Inc.
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

package memo

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/mitchellh/hashstructure"
)

// hashNode interns a canonical node: its operator, payload and child groups.
func hashNode(n *ExprNode) uint64 {
	h := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint16(buf[:2], uint16(n.Op))
	h.Write(buf[:2])
	if n.Value != nil {
		binary.LittleEndian.PutUint64(buf[:], hashValue(n.Value))
		h.Write(buf[:])
	}
	for _, c := range n.Children {
		binary.LittleEndian.PutUint32(buf[:4], uint32(c))
		h.Write(buf[:4])
	}
	return h.Sum64()
}

func hashValue(v interface{}) uint64 {
	h := xxhash.New()
	h.WriteString(fmt.Sprintf("%T", v))
	vh, err := hashstructure.Hash(v, nil)
	if err != nil {
		// payloads hashstructure cannot walk fall back to their printed form
		h.WriteString(fmt.Sprintf("%#v", v))
	} else {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], vh)
		h.Write(buf[:])
	}
	return h.Sum64()
}

func valuesEqual(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
}

func nodesEqualExact(a, b *ExprNode) bool {
	if a.Op != b.Op || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if a.Children[i] != b.Children[i] {
			return false
		}
	}
	return valuesEqual(a.Value, b.Value)
}
