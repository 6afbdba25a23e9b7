/*
 * Copyright 2018 The CovenantSQL Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package merkle

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CovenantSQL/multichain/crypto/hash"
)

func leaves(n int) (l []hash.Hash) {
	for i := 0; i < n; i++ {
		l = append(l, hash.THashH([]byte{byte(i), 0x5a}))
	}
	return
}

func TestRoot(t *testing.T) {
	Convey("Degenerate trees should have trivial roots", t, func() {
		So(Root(nil), ShouldResemble, hash.Hash{})
		l := leaves(1)
		So(Root(l), ShouldResemble, l[0])
	})
	Convey("Roots should be built pairwise", t, func() {
		l := leaves(5)
		So(Root(l[:2]), ShouldResemble, MergeTwoHash(l[0], l[1]))
		So(Root(l[:3]), ShouldResemble, MergeTwoHash(
			MergeTwoHash(l[0], l[1]), MergeTwoHash(l[2], l[2])))
		So(Root(l), ShouldResemble, MergeTwoHash(
			MergeTwoHash(MergeTwoHash(l[0], l[1]), MergeTwoHash(l[2], l[3])),
			MergeTwoHash(MergeTwoHash(l[4], l[4]), MergeTwoHash(l[4], l[4])),
		))
	})
	Convey("Roots should depend on every leaf and their order", t, func() {
		l := leaves(4)
		root := Root(l)
		So(Root(l), ShouldResemble, root)
		So(l[0], ShouldResemble, leaves(1)[0])

		swapped := []hash.Hash{l[1], l[0], l[2], l[3]}
		So(Root(swapped), ShouldNotResemble, root)
		So(Root(l[:3]), ShouldNotResemble, root)
		So(MergeTwoHash(l[0], l[1]), ShouldNotResemble, MergeTwoHash(l[1], l[0]))
	})
}
