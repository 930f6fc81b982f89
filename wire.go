package pgc

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	transferFieldPoints  protowire.Number = 1
	transferFieldScalars protowire.Number = 2
	transferFieldLR      protowire.Number = 3

	burnFieldReceiver protowire.Number = 1
	burnFieldAmount   protowire.Number = 2
	burnFieldPoints   protowire.Number = 3
	burnFieldZ        protowire.Number = 4
)

func appendPointsField(b []byte, num protowire.Number, points []*bn254.G1Affine) []byte {
	for _, p := range points {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, p.Marshal())
	}
	return b
}

func appendScalarsField(b []byte, num protowire.Number, scalars []*fr.Element) []byte {
	for _, s := range scalars {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, s.Marshal())
	}
	return b
}

func (tp *TransferProof) MarshalBinary() ([]byte, error) {
	points, scalars, lr := tp.Encode()
	var b []byte
	b = appendPointsField(b, transferFieldPoints, points)
	b = appendScalarsField(b, transferFieldScalars, scalars)
	b = appendPointsField(b, transferFieldLR, lr)
	return b, nil
}

func (bp *BurnProof) MarshalBinary() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, burnFieldReceiver, protowire.BytesType)
	b = protowire.AppendBytes(b, bp.Receiver.Bytes())
	b = protowire.AppendTag(b, burnFieldAmount, protowire.VarintType)
	b = protowire.AppendVarint(b, bp.Amount)
	b = appendPointsField(b, burnFieldPoints, bp.Points())
	b = appendScalarsField(b, burnFieldZ, []*fr.Element{bp.Equality.Z})
	return b, nil
}

func UnmarshalTransferProof(data []byte) (*TransferProof, error) {
	var points, lr []*bn254.G1Affine
	var scalars []*fr.Element
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return malformed("transfer field %d type %d", num, typ)
		}
		switch num {
		case transferFieldPoints, transferFieldLR:
			p, err := decodePointBytes(v)
			if err != nil {
				return err
			}
			if num == transferFieldPoints {
				points = append(points, p)
			} else {
				lr = append(lr, p)
			}
		case transferFieldScalars:
			s, err := decodeScalarBytes(v)
			if err != nil {
				return err
			}
			scalars = append(scalars, s)
		default:
			return malformed("transfer unknown field %d", num)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return DecodeTransferProof(points, scalars, lr)
}

func UnmarshalBurnProof(data []byte) (*BurnProof, error) {
	var receiver common.Address
	var amount uint64
	var points []*bn254.G1Affine
	var z *fr.Element
	var seenReceiver, seenAmount bool
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, v []byte, u uint64) error {
		switch {
		case num == burnFieldReceiver && typ == protowire.BytesType:
			if len(v) != common.AddressLength {
				return malformed("burn receiver length %d", len(v))
			}
			receiver = common.BytesToAddress(v)
			seenReceiver = true
		case num == burnFieldAmount && typ == protowire.VarintType:
			amount = u
			seenAmount = true
		case num == burnFieldPoints && typ == protowire.BytesType:
			p, err := decodePointBytes(v)
			if err != nil {
				return err
			}
			points = append(points, p)
		case num == burnFieldZ && typ == protowire.BytesType && z == nil:
			s, err := decodeScalarBytes(v)
			if err != nil {
				return err
			}
			z = s
		default:
			return malformed("burn unexpected field %d type %d", num, typ)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !seenReceiver || !seenAmount {
		return nil, malformed("burn missing receiver or amount")
	}
	return DecodeBurnProof(receiver, amount, points, z)
}

func walkFields(data []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, u uint64) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(ErrMalformedInput, protowire.ParseError(n).Error())
		}
		data = data[n:]
		var v []byte
		var u uint64
		switch typ {
		case protowire.BytesType:
			v, n = protowire.ConsumeBytes(data)
		case protowire.VarintType:
			u, n = protowire.ConsumeVarint(data)
		default:
			return malformed("wire type %d", typ)
		}
		if n < 0 {
			return errors.Wrap(ErrMalformedInput, protowire.ParseError(n).Error())
		}
		data = data[n:]
		if err := fn(num, typ, v, u); err != nil {
			return err
		}
	}
	return nil
}

func decodePointBytes(v []byte) (*bn254.G1Affine, error) {
	if len(v) != bn254.SizeOfG1AffineUncompressed {
		return nil, malformed("point length %d", len(v))
	}
	var p bn254.G1Affine
	if err := p.Unmarshal(v); err != nil {
		return nil, errors.Wrap(ErrMalformedInput, err.Error())
	}
	return &p, nil
}

func decodeScalarBytes(v []byte) (*fr.Element, error) {
	if len(v) != fr.Bytes {
		return nil, malformed("scalar length %d", len(v))
	}
	return DecodeScalar(new(big.Int).SetBytes(v))
}
