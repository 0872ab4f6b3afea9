// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// SWCRecord is one sample line of an SWC file.
type SWCRecord struct {
	ID     int
	Tag    int
	X      float32
	Y      float32
	Z      float32
	R      float32
	Parent int
}

func (sr SWCRecord) String() string {
	return fmt.Sprintf("%d %d %g %g %g %g %d", sr.ID, sr.Tag, sr.X, sr.Y, sr.Z, sr.R, sr.Parent)
}

// SWCError reports an invalid SWC record.
type SWCError struct {

	// sample id of the offending record
	ID int

	// what went wrong
	Msg string
}

func (e *SWCError) Error() string {
	return fmt.Sprintf("morph: %s: sample id %d", e.Msg, e.ID)
}

// SWCData is the content of an SWC file: leading comment lines and
// validated records sorted by id.
type SWCData struct {
	Metadata string
	Records  []SWCRecord
}

// ParseSWC reads SWC data.  Lines starting with # before the first record
// are collected as metadata; blank lines are skipped.
func ParseSWC(r io.Reader) (*SWCData, error) {
	sd := &SWCData{}
	sc := bufio.NewScanner(r)
	var meta []string
	lnum := 0
	for sc.Scan() {
		lnum++
		ln := strings.TrimSpace(sc.Text())
		if ln == "" {
			continue
		}
		if strings.HasPrefix(ln, "#") {
			if len(sd.Records) == 0 {
				meta = append(meta, strings.TrimSpace(strings.TrimPrefix(ln, "#")))
			}
			continue
		}
		rec, err := parseSWCRecord(ln)
		if err != nil {
			return nil, fmt.Errorf("morph: SWC line %d: %w", lnum, err)
		}
		sd.Records = append(sd.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sd.Metadata = strings.Join(meta, "\n")
	recs, err := ValidateSWC(sd.Records)
	if err != nil {
		return nil, err
	}
	sd.Records = recs
	return sd, nil
}

func parseSWCRecord(ln string) (SWCRecord, error) {
	flds := strings.Fields(ln)
	if len(flds) != 7 {
		return SWCRecord{}, fmt.Errorf("expected 7 fields, got %d", len(flds))
	}
	var rec SWCRecord
	var err error
	ints := []*int{&rec.ID, &rec.Tag}
	for i, p := range ints {
		if *p, err = strconv.Atoi(flds[i]); err != nil {
			return rec, err
		}
	}
	flts := []*float32{&rec.X, &rec.Y, &rec.Z, &rec.R}
	for i, p := range flts {
		v, err := strconv.ParseFloat(flds[2+i], 32)
		if err != nil {
			return rec, err
		}
		*p = float32(v)
	}
	if rec.Parent, err = strconv.Atoi(flds[6]); err != nil {
		return rec, err
	}
	return rec, nil
}

// ValidateSWC checks that every parent id precedes its child, ids are unique,
// parents exist and there is more than a single soma sample.
// It returns the records sorted by id.
func ValidateSWC(recs []SWCRecord) ([]SWCRecord, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	if len(recs) < 2 {
		return nil, &SWCError{ID: recs[0].ID, Msg: "SWC with spherical somata are not supported"}
	}
	seen := make(map[int]bool, len(recs))
	for _, r := range recs {
		if r.Parent >= r.ID {
			return nil, &SWCError{ID: r.ID, Msg: "SWC parent id is not less than sample id"}
		}
		if seen[r.ID] {
			return nil, &SWCError{ID: r.ID, Msg: "duplicate SWC sample id"}
		}
		seen[r.ID] = true
	}
	srt := append([]SWCRecord(nil), recs...)
	sort.Slice(srt, func(i, j int) bool { return srt[i].ID < srt[j].ID })
	for i, r := range srt {
		if (i == 0 && r.Parent != -1) || (i > 0 && !seen[r.Parent]) {
			return nil, &SWCError{ID: r.ID, Msg: "missing SWC parent record"}
		}
	}
	return srt, nil
}

// SegmentTree converts the samples to segments: every sample other than the
// root becomes a segment from its parent sample to itself, with its own tag.
func (sd *SWCData) SegmentTree() (*SegmentTree, error) {
	st := NewSegmentTree()
	if len(sd.Records) == 0 {
		return st, nil
	}
	idx := make(map[int]int, len(sd.Records))
	seg := make(map[int]int, len(sd.Records))
	for i, r := range sd.Records {
		idx[r.ID] = i
	}
	root := sd.Records[0]
	seg[root.ID] = MNpos
	for _, r := range sd.Records[1:] {
		if r.Parent == -1 {
			return nil, &SWCError{ID: r.ID, Msg: "multiple root samples"}
		}
		pr := sd.Records[idx[r.Parent]]
		prox := NewPoint(pr.X, pr.Y, pr.Z, pr.R)
		dist := NewPoint(r.X, r.Y, r.Z, r.R)
		si, err := st.Append(seg[r.Parent], prox, dist, r.Tag)
		if err != nil {
			return nil, err
		}
		seg[r.ID] = si
	}
	return st, nil
}
