// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package trace collects sampled traces of a simulation into an
// etable.Table, and writes them as CSV or as an SVG plot.
package trace
