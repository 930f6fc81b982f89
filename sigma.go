package pgc

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/gtank/merlin"
)

// ValidityProof shows that X1 = r*pk1, X2 = r*pk2 and Y = r*G + v*H share
// one randomness r and one value v.
type ValidityProof struct {
	A1, A2, B *bn254.G1Affine
	Zr, Zv    *fr.Element
}

type validityNonce struct {
	a, b *fr.Element
}

func commitValidity(params *Params, pk1, pk2 *bn254.G1Affine) (*ValidityProof, *validityNonce) {
	a, b := randomScalar(), randomScalar()
	return &ValidityProof{
		A1: scalarMul(pk1, a),
		A2: scalarMul(pk2, a),
		B:  params.pc.Commit(b, a),
	}, &validityNonce{a: a, b: b}
}

func (p *ValidityProof) respond(e, r, v *fr.Element, k *validityNonce) {
	var zr, zv fr.Element
	zr.Mul(e, r)
	zr.Add(&zr, k.a)
	zv.Mul(e, v)
	zv.Add(&zv, k.b)
	p.Zr, p.Zv = &zr, &zv
}

func (p *ValidityProof) appendTo(t *merlin.Transcript) {
	AppendPoint("A1", p.A1, t)
	AppendPoint("A2", p.A2, t)
	AppendPoint("B", p.B, t)
}

func (p *ValidityProof) verify(params *Params, e *fr.Element, pk1, pk2, X1, X2, Y *bn254.G1Affine) bool {
	var one fr.Element
	one.SetOne()
	if !scalarMul(pk1, p.Zr).Equal(multiscalarMul([]*fr.Element{&one, e}, []*bn254.G1Affine{p.A1, X1})) {
		return false
	}
	if !scalarMul(pk2, p.Zr).Equal(multiscalarMul([]*fr.Element{&one, e}, []*bn254.G1Affine{p.A2, X2})) {
		return false
	}
	return params.pc.Commit(p.Zv, p.Zr).Equal(multiscalarMul([]*fr.Element{&one, e}, []*bn254.G1Affine{p.B, Y}))
}

// RefreshProof shows that X = s*pk and Y = s*G + m*H share one randomness s,
// so the refreshed balance is a well formed encryption under pk.
type RefreshProof struct {
	A, B   *bn254.G1Affine
	Zs, Zm *fr.Element
}

func commitRefresh(params *Params, pk *bn254.G1Affine) (*RefreshProof, *validityNonce) {
	a, b := randomScalar(), randomScalar()
	return &RefreshProof{
		A: scalarMul(pk, a),
		B: params.pc.Commit(b, a),
	}, &validityNonce{a: a, b: b}
}

func (p *RefreshProof) respond(e, s, m *fr.Element, k *validityNonce) {
	var zs, zm fr.Element
	zs.Mul(e, s)
	zs.Add(&zs, k.a)
	zm.Mul(e, m)
	zm.Add(&zm, k.b)
	p.Zs, p.Zm = &zs, &zm
}

func (p *RefreshProof) appendTo(t *merlin.Transcript) {
	AppendPoint("refresh.valid.A", p.A, t)
	AppendPoint("refresh.valid.B", p.B, t)
}

func (p *RefreshProof) verify(params *Params, e *fr.Element, pk *bn254.G1Affine, c *Ciphertext) bool {
	var one fr.Element
	one.SetOne()
	if !scalarMul(pk, p.Zs).Equal(multiscalarMul([]*fr.Element{&one, e}, []*bn254.G1Affine{p.A, c.X})) {
		return false
	}
	return params.pc.Commit(p.Zm, p.Zs).Equal(multiscalarMul([]*fr.Element{&one, e}, []*bn254.G1Affine{p.B, c.Y}))
}

// EqualityProof is a Chaum-Pedersen proof that log_G(P) equals log_D(E).
type EqualityProof struct {
	A, B *bn254.G1Affine
	Z    *fr.Element
}

func commitEquality(G, D *bn254.G1Affine) (*EqualityProof, *fr.Element) {
	k := randomScalar()
	return &EqualityProof{A: scalarMul(G, k), B: scalarMul(D, k)}, k
}

func (p *EqualityProof) respond(e, secret, k *fr.Element) {
	var z fr.Element
	z.Mul(e, secret)
	z.Add(&z, k)
	p.Z = &z
}

func (p *EqualityProof) appendTo(prefix string, t *merlin.Transcript) {
	AppendPoint(prefix+".A", p.A, t)
	AppendPoint(prefix+".B", p.B, t)
}

func (p *EqualityProof) verify(e *fr.Element, G, P, D, E *bn254.G1Affine) bool {
	var one fr.Element
	one.SetOne()
	if !scalarMul(G, p.Z).Equal(multiscalarMul([]*fr.Element{&one, e}, []*bn254.G1Affine{p.A, P})) {
		return false
	}
	return scalarMul(D, p.Z).Equal(multiscalarMul([]*fr.Element{&one, e}, []*bn254.G1Affine{p.B, E}))
}
