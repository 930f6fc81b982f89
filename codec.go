package pgc

import (
	"encoding/json"
	"io"
	"math/big"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/pkg/errors"
)

// PointJSON is the affine (X, Y) form of a point, (0, 0) is the identity.
type PointJSON struct {
	X *big.Int `json:"X"`
	Y *big.Int `json:"Y"`
}

type GeneratorVector struct {
	Vec []PointJSON `json:"Vec"`
}

type InnerProductParams struct {
	GV GeneratorVector `json:"GV"`
	HV GeneratorVector `json:"HV"`
	U  PointJSON       `json:"U"`
}

type InnerProductCommit struct {
	P PointJSON `json:"P"`
	C *big.Int  `json:"C"`
}

type InnerProductProofJSON struct {
	L []PointJSON `json:"L"`
	R []PointJSON `json:"R"`
	A *big.Int    `json:"A"`
	B *big.Int    `json:"B"`
}

// TransferTx carries the flattened arguments of an aggregated transfer.
type TransferTx struct {
	Points  []*big.Int `json:"Points"`
	Scalars []*big.Int `json:"Scalars"`
	Lr      []*big.Int `json:"Lr"`
}

type BurnTx struct {
	Receiver string     `json:"Receiver"`
	Amount   uint64     `json:"Amount"`
	Points   []*big.Int `json:"Points"`
	Z        *big.Int   `json:"Z"`
}

func PointToJSON(p *bn254.G1Affine) PointJSON {
	return PointJSON{
		X: p.X.BigInt(new(big.Int)),
		Y: p.Y.BigInt(new(big.Int)),
	}
}

func pointsToJSON(ps []*bn254.G1Affine) []PointJSON {
	out := make([]PointJSON, len(ps))
	for i, p := range ps {
		out[i] = PointToJSON(p)
	}
	return out
}

func (pj PointJSON) Point() (*bn254.G1Affine, error) {
	return DecodePoint(pj.X, pj.Y)
}

func (pj PointJSON) Flatten() []*big.Int {
	return []*big.Int{pj.X, pj.Y}
}

func (gv GeneratorVector) Flatten() []*big.Int {
	out := make([]*big.Int, 0, 2*len(gv.Vec))
	for _, p := range gv.Vec {
		out = append(out, p.X, p.Y)
	}
	return out
}

// DecodePoint validates affine coordinates and returns the point they name.
func DecodePoint(x, y *big.Int) (*bn254.G1Affine, error) {
	if x == nil || y == nil {
		return nil, malformed("DecodePoint missing coordinate")
	}
	modulus := fp.Modulus()
	if x.Sign() < 0 || x.Cmp(modulus) >= 0 || y.Sign() < 0 || y.Cmp(modulus) >= 0 {
		return nil, malformed("DecodePoint coordinate out of range")
	}
	var p bn254.G1Affine
	p.X.SetBigInt(x)
	p.Y.SetBigInt(y)
	if p.IsInfinity() {
		return &p, nil
	}
	if !p.IsOnCurve() {
		return nil, malformed("DecodePoint not on curve")
	}
	return &p, nil
}

// DecodePoints reads alternating X, Y coordinates.
func DecodePoints(flat []*big.Int) ([]*bn254.G1Affine, error) {
	if len(flat)%2 != 0 {
		return nil, malformed("DecodePoints odd length %d", len(flat))
	}
	out := make([]*bn254.G1Affine, len(flat)/2)
	for i := range out {
		p, err := DecodePoint(flat[2*i], flat[2*i+1])
		if err != nil {
			return nil, errors.Wrapf(err, "point %d", i)
		}
		out[i] = p
	}
	return out, nil
}

func FlattenPoints(ps []*bn254.G1Affine) []*big.Int {
	out := make([]*big.Int, 0, 2*len(ps))
	for _, p := range ps {
		out = append(out, p.X.BigInt(new(big.Int)), p.Y.BigInt(new(big.Int)))
	}
	return out
}

// DecodeScalar rejects negative and non canonical values.
func DecodeScalar(b *big.Int) (*fr.Element, error) {
	if b == nil {
		return nil, malformed("DecodeScalar missing value")
	}
	if b.Sign() < 0 || b.Cmp(fr.Modulus()) >= 0 {
		return nil, malformed("DecodeScalar out of range")
	}
	var s fr.Element
	s.SetBigInt(b)
	return &s, nil
}

func DecodeScalars(bs []*big.Int) ([]*fr.Element, error) {
	out := make([]*fr.Element, len(bs))
	for i, b := range bs {
		s, err := DecodeScalar(b)
		if err != nil {
			return nil, errors.Wrapf(err, "scalar %d", i)
		}
		out[i] = s
	}
	return out, nil
}

func ScalarsToBig(ss []*fr.Element) []*big.Int {
	out := make([]*big.Int, len(ss))
	for i, s := range ss {
		out[i] = scalarBig(s)
	}
	return out
}

func (proof *InnerProductProof) JSON() *InnerProductProofJSON {
	return &InnerProductProofJSON{
		L: pointsToJSON(proof.LVec),
		R: pointsToJSON(proof.RVec),
		A: scalarBig(proof.A),
		B: scalarBig(proof.B),
	}
}

func (pj *InnerProductProofJSON) Proof() (*InnerProductProof, error) {
	var l, r []*bn254.G1Affine
	for i := range pj.L {
		p, err := pj.L[i].Point()
		if err != nil {
			return nil, errors.Wrapf(err, "L %d", i)
		}
		l = append(l, p)
	}
	for i := range pj.R {
		p, err := pj.R[i].Point()
		if err != nil {
			return nil, errors.Wrapf(err, "R %d", i)
		}
		r = append(r, p)
	}
	a, err := DecodeScalar(pj.A)
	if err != nil {
		return nil, errors.Wrap(err, "a")
	}
	b, err := DecodeScalar(pj.B)
	if err != nil {
		return nil, errors.Wrap(err, "b")
	}
	return &InnerProductProof{LVec: l, RVec: r, A: a, B: b}, nil
}

func ReadJSON(r io.Reader, v interface{}) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(ErrMalformedInput, err.Error())
	}
	return nil
}

func LoadJSON(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f, v)
}

func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "write %s", path)
}
