// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cable

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/emer/cable/morph"
	"github.com/goki/ki/ints"
)

// CVPolicy determines how many control volumes each branch is divided into.
type CVPolicy interface {
	fmt.Stringer

	// NumCVs returns the number of CVs, at least 1, for branch bi
	NumCVs(em *morph.Embedding, bi int) int
}

// FixedPerBranch divides every branch into N CVs of equal length.
type FixedPerBranch struct {
	N int
}

func (fp FixedPerBranch) NumCVs(em *morph.Embedding, bi int) int {
	return ints.MaxInt(fp.N, 1)
}

func (fp FixedPerBranch) String() string {
	return fmt.Sprintf("(fixed-per-branch %d)", fp.N)
}

// MaxExtent divides every branch into the fewest equal CVs no longer than Length µm.
type MaxExtent struct {
	Length float32
}

func (me MaxExtent) NumCVs(em *morph.Embedding, bi int) int {
	if me.Length <= 0 {
		return 1
	}
	return ints.MaxInt(int(math32.Ceil(em.Length(bi)/me.Length)), 1)
}

func (me MaxExtent) String() string {
	return fmt.Sprintf("(max-extent %g)", me.Length)
}

// DefaultCVPolicy is used when the decor does not set one.
var DefaultCVPolicy CVPolicy = MaxExtent{Length: 10}
