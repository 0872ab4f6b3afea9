// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import (
	"fmt"
	"sort"
)

// LabelDict maps names to regions and locsets.  A name can label
// either a region or a locset, not both.
type LabelDict struct {

	// named regions
	Regions map[string]Region

	// named locsets
	Locsets map[string]Locset
}

// NewLabelDict returns an empty label dictionary.
func NewLabelDict() *LabelDict {
	return &LabelDict{Regions: map[string]Region{}, Locsets: map[string]Locset{}}
}

// Set parses expr and stores it under name.  Whether the label is a region
// or a locset follows from the expression; an expression that is only a
// reference to another label takes the kind of that label.
func (ld *LabelDict) Set(name, expr string) error {
	val, err := parseExpr(expr, exprAny, ld)
	if err != nil {
		return err
	}
	switch v := val.(type) {
	case Region:
		return ld.SetRegion(name, v)
	case Locset:
		return ld.SetLocset(name, v)
	}
	return fmt.Errorf("morph: label %q: expression %q is neither a region nor a locset", name, expr)
}

// SetRegion stores a region under name.
func (ld *LabelDict) SetRegion(name string, reg Region) error {
	if _, has := ld.Locsets[name]; has {
		return fmt.Errorf("morph: label %q already names a locset", name)
	}
	ld.Regions[name] = reg
	return nil
}

// SetLocset stores a locset under name.
func (ld *LabelDict) SetLocset(name string, ls Locset) error {
	if _, has := ld.Regions[name]; has {
		return fmt.Errorf("morph: label %q already names a region", name)
	}
	ld.Locsets[name] = ls
	return nil
}

// Region returns the region labeled name.
func (ld *LabelDict) Region(name string) (Region, bool) {
	r, ok := ld.Regions[name]
	return r, ok
}

// Locset returns the locset labeled name.
func (ld *LabelDict) Locset(name string) (Locset, bool) {
	l, ok := ld.Locsets[name]
	return l, ok
}

// Names returns all labels in sorted order.
func (ld *LabelDict) Names() []string {
	nms := make([]string, 0, len(ld.Regions)+len(ld.Locsets))
	for nm := range ld.Regions {
		nms = append(nms, nm)
	}
	for nm := range ld.Locsets {
		nms = append(nms, nm)
	}
	sort.Strings(nms)
	return nms
}

// Clone returns a shallow copy of the dictionary; expressions are immutable.
func (ld *LabelDict) Clone() *LabelDict {
	cp := NewLabelDict()
	for k, v := range ld.Regions {
		cp.Regions[k] = v
	}
	for k, v := range ld.Locsets {
		cp.Locsets[k] = v
	}
	return cp
}

// ParseRegion parses a region expression.  Label references are not
// resolved until the region is thingified.
func ParseRegion(expr string) (Region, error) {
	val, err := parseExpr(expr, exprRegion, nil)
	if err != nil {
		return nil, err
	}
	return val.(Region), nil
}

// ParseLocset parses a locset expression.  Label references are not
// resolved until the locset is thingified.
func ParseLocset(expr string) (Locset, error) {
	val, err := parseExpr(expr, exprLocset, nil)
	if err != nil {
		return nil, err
	}
	return val.(Locset), nil
}

///////////////////////////////////////////////////////////////////////
//  Provider

// Provider thingifies regions and locsets on one morphology, resolving
// label references through a LabelDict.
type Provider struct {
	Morph  *Morphology
	Embed  *Embedding
	Labels *LabelDict

	// labels currently being resolved, for cycle detection
	active map[string]bool
}

// NewProvider returns a provider for the morphology with the given labels (may be nil).
func NewProvider(mp *Morphology, ld *LabelDict) *Provider {
	if ld == nil {
		ld = NewLabelDict()
	}
	return &Provider{Morph: mp, Embed: NewEmbedding(mp), Labels: ld, active: map[string]bool{}}
}

// Region returns the cables of the region labeled name.
func (pv *Provider) Region(name string) ([]Cable, error) {
	reg, ok := pv.Labels.Region(name)
	if !ok {
		return nil, fmt.Errorf("morph: no region labeled %q", name)
	}
	if pv.active[name] {
		return nil, fmt.Errorf("morph: circular definition of label %q", name)
	}
	pv.active[name] = true
	defer delete(pv.active, name)
	return reg.cables(pv)
}

// Locset returns the locations of the locset labeled name.
func (pv *Provider) Locset(name string) ([]Location, error) {
	ls, ok := pv.Labels.Locset(name)
	if !ok {
		return nil, fmt.Errorf("morph: no locset labeled %q", name)
	}
	if pv.active[name] {
		return nil, fmt.Errorf("morph: circular definition of label %q", name)
	}
	pv.active[name] = true
	defer delete(pv.active, name)
	return ls.locations(pv)
}

// Cables thingifies a region.
func (pv *Provider) Cables(reg Region) ([]Cable, error) {
	return reg.cables(pv)
}

// Locations thingifies a locset.
func (pv *Provider) Locations(ls Locset) ([]Location, error) {
	return ls.locations(pv)
}

///////////////////////////////////////////////////////////////////////
//  Expression parsing

type exprKind int

const (
	exprAny exprKind = iota
	exprRegion
	exprLocset
)

func (ek exprKind) String() string {
	switch ek {
	case exprRegion:
		return "region"
	case exprLocset:
		return "locset"
	}
	return "expression"
}

func parseExpr(src string, want exprKind, ld *LabelDict) (any, error) {
	sx, err := parseSexpr(src)
	if err != nil {
		return nil, err
	}
	ep := &exprParser{src: src, ld: ld}
	return ep.expr(sx, want)
}

type exprParser struct {
	src string
	ld  *LabelDict
}

func (ep *exprParser) errorf(sx *sexpr, format string, args ...any) error {
	return &ParseError{Pos: sx.pos, Msg: fmt.Sprintf(format, args...), Expr: ep.src}
}

func (ep *exprParser) expr(sx *sexpr, want exprKind) (any, error) {
	switch sx.kind {
	case sexprString:
		return ep.label(sx, want)
	case sexprList:
	default:
		return nil, ep.errorf(sx, "expected %v, got %q", want, sx.sym)
	}
	args := sx.args()
	var val any
	var err error
	switch hd := sx.head(); hd {
	case "all":
		val, err = RegAll{}, ep.nargs(sx, 0)
	case "region-nil":
		val, err = RegNil{}, ep.nargs(sx, 0)
	case "locset-nil":
		val, err = LocNil{}, ep.nargs(sx, 0)
	case "nil":
		if err = ep.nargs(sx, 0); err == nil {
			if want == exprLocset {
				val = LocNil{}
			} else {
				val = RegNil{}
			}
		}
	case "tag":
		var n []float64
		if n, err = ep.numbers(sx, 1); err == nil {
			val = RegTag{Tag: int(n[0])}
		}
	case "branch":
		var n []float64
		if n, err = ep.numbers(sx, 1); err == nil {
			val = RegBranch{Branch: int(n[0])}
		}
	case "cable":
		var n []float64
		if n, err = ep.numbers(sx, 3); err == nil {
			val = RegCable{Cable: Cable{Branch: int(n[0]), Prox: float32(n[1]), Dist: float32(n[2])}}
		}
	case "root":
		val, err = LocRoot{}, ep.nargs(sx, 0)
	case "terminal":
		val, err = LocTerminal{}, ep.nargs(sx, 0)
	case "location":
		var n []float64
		if n, err = ep.numbers(sx, 2); err == nil {
			val = LocLocation{Loc: Location{Branch: int(n[0]), Pos: float32(n[1])}}
		}
	case "on-branches":
		var n []float64
		if n, err = ep.numbers(sx, 1); err == nil {
			val = LocOnBranches{Pos: float32(n[0])}
		}
	case "sum":
		var lss []Locset
		if lss, err = ep.locsets(args); err == nil {
			val = LocSum{Locs: lss}
		}
	case "join":
		val, err = ep.join(sx, want)
	case "":
		return nil, ep.errorf(sx, "empty or malformed expression")
	default:
		return nil, ep.errorf(sx, "unknown expression %q", hd)
	}
	if err != nil {
		return nil, err
	}
	return ep.check(sx, val, want)
}

func (ep *exprParser) check(sx *sexpr, val any, want exprKind) (any, error) {
	switch want {
	case exprRegion:
		if _, ok := val.(Region); !ok {
			return nil, ep.errorf(sx, "expected a region, got locset %v", val)
		}
	case exprLocset:
		if _, ok := val.(Locset); !ok {
			return nil, ep.errorf(sx, "expected a locset, got region %v", val)
		}
	}
	return val, nil
}

func (ep *exprParser) label(sx *sexpr, want exprKind) (any, error) {
	switch want {
	case exprRegion:
		return RegLabel{Name: sx.sym}, nil
	case exprLocset:
		return LocLabel{Name: sx.sym}, nil
	}
	if ep.ld != nil {
		if _, ok := ep.ld.Regions[sx.sym]; ok {
			return RegLabel{Name: sx.sym}, nil
		}
		if _, ok := ep.ld.Locsets[sx.sym]; ok {
			return LocLabel{Name: sx.sym}, nil
		}
	}
	return nil, ep.errorf(sx, "unknown label %q", sx.sym)
}

func (ep *exprParser) nargs(sx *sexpr, n int) error {
	if len(sx.args()) != n {
		return ep.errorf(sx, "%s takes %d arguments, got %d", sx.head(), n, len(sx.args()))
	}
	return nil
}

func (ep *exprParser) numbers(sx *sexpr, n int) ([]float64, error) {
	if err := ep.nargs(sx, n); err != nil {
		return nil, err
	}
	vals := make([]float64, n)
	for i, a := range sx.args() {
		if a.kind != sexprNumber {
			return nil, ep.errorf(a, "%s expects numeric arguments", sx.head())
		}
		vals[i] = a.num
	}
	return vals, nil
}

func (ep *exprParser) locsets(args []*sexpr) ([]Locset, error) {
	lss := make([]Locset, len(args))
	for i, a := range args {
		v, err := ep.expr(a, exprLocset)
		if err != nil {
			return nil, err
		}
		lss[i] = v.(Locset)
	}
	return lss, nil
}

// join is a region union or a locset union depending on its first argument.
func (ep *exprParser) join(sx *sexpr, want exprKind) (any, error) {
	args := sx.args()
	if len(args) == 0 {
		return nil, ep.errorf(sx, "join needs at least one argument")
	}
	if want == exprAny {
		first, err := ep.expr(args[0], exprAny)
		if err != nil {
			return nil, err
		}
		if _, ok := first.(Region); ok {
			want = exprRegion
		} else {
			want = exprLocset
		}
	}
	if want == exprLocset {
		lss, err := ep.locsets(args)
		if err != nil {
			return nil, err
		}
		return LocJoin{Locs: lss}, nil
	}
	regs := make([]Region, len(args))
	for i, a := range args {
		v, err := ep.expr(a, exprRegion)
		if err != nil {
			return nil, err
		}
		regs[i] = v.(Region)
	}
	return RegJoin{Regs: regs}, nil
}
