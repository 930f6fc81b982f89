package pgc

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ScalarExp iterates the powers 1, x, x^2, ...
type ScalarExp struct {
	X        *fr.Element
	NextExpX *fr.Element
}

func NewScalarExp(x *fr.Element) *ScalarExp {
	var one fr.Element
	return &ScalarExp{
		X:        x,
		NextExpX: one.SetOne(),
	}
}

func (s *ScalarExp) Next() *fr.Element {
	r := cloneScalar(s.NextExpX)
	s.NextExpX.Mul(s.NextExpX, s.X)
	return r
}

type VecPoly1 struct {
	As []*fr.Element
	Bs []*fr.Element
}

func ZeroVecPoly1(n int64) *VecPoly1 {
	vec := &VecPoly1{As: make([]*fr.Element, n), Bs: make([]*fr.Element, n)}
	for i := 0; i < int(n); i++ {
		vec.As[i] = new(fr.Element)
		vec.Bs[i] = new(fr.Element)
	}
	return vec
}

func (v *VecPoly1) InnerProduct(rhs *VecPoly1) *Poly2 {
	t0 := innerProduct(v.As, rhs.As)
	t2 := innerProduct(v.Bs, rhs.Bs)

	l0PlusL1 := addVec(v.As, v.Bs)
	r0PlusR1 := addVec(rhs.As, rhs.Bs)

	var t1 fr.Element
	t1.Sub(innerProduct(l0PlusL1, r0PlusR1), t0)
	t1.Sub(&t1, t2)

	return &Poly2{
		A: t0,
		B: &t1,
		C: t2,
	}
}

func (v *VecPoly1) Eval(x *fr.Element) []*fr.Element {
	out := make([]*fr.Element, len(v.As))
	for i := range v.As {
		var r fr.Element
		r.Mul(v.Bs[i], x)
		out[i] = r.Add(v.As[i], &r)
	}
	return out
}

type Poly2 struct {
	A *fr.Element
	B *fr.Element
	C *fr.Element
}

// A + x * (B + x * C)
func (p *Poly2) Eval(x *fr.Element) *fr.Element {
	var r fr.Element
	r.Mul(x, p.C)
	r.Add(p.B, &r)
	r.Mul(x, &r)
	return r.Add(p.A, &r)
}

func ScalarExpVartime(x *fr.Element, n uint64) *fr.Element {
	var result, aux fr.Element
	result.SetOne()
	aux.Set(x)

	for n > 0 {
		if n&1 == 1 {
			result.Mul(&result, &aux)
		}
		n = n >> 1
		aux.Square(&aux)
	}
	return &result
}

// sumOfPowers returns 1 + x + ... + x^(n-1).
func sumOfPowers(x *fr.Element, n int) *fr.Element {
	var sum fr.Element
	exp := NewScalarExp(x)
	for i := 0; i < n; i++ {
		sum.Add(&sum, exp.Next())
	}
	return &sum
}

func innerProduct(a []*fr.Element, b []*fr.Element) *fr.Element {
	if len(a) != len(b) {
		panic(fmt.Sprintf("innerProduct lengths of vectors do not match %d, %d", len(a), len(b)))
	}

	var sum fr.Element
	for i := range a {
		var r fr.Element
		sum.Add(&sum, r.Mul(a[i], b[i]))
	}
	return &sum
}

func addVec(a []*fr.Element, b []*fr.Element) []*fr.Element {
	if len(a) != len(b) {
		panic(fmt.Sprintf("addVec lengths of vectors do not match %d, %d", len(a), len(b)))
	}

	out := make([]*fr.Element, len(a))
	for i := range a {
		var r fr.Element
		out[i] = r.Add(a[i], b[i])
	}
	return out
}
