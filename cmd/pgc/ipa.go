package main

import (
	"fmt"
	"math/big"
	"path/filepath"

	pgc "github.com/MixinNetwork/pgc-go"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixtureDir    string
	fixtureLength int
)

var ipaFixtureCmd = &cobra.Command{
	Use:   "ipa-fixture",
	Short: "Write inner product params, commit and proof fixtures",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := newParams()
		if err != nil {
			return err
		}
		ipp, err := params.InnerProductParams(fixtureLength)
		if err != nil {
			return err
		}
		a := make([]*fr.Element, fixtureLength)
		b := make([]*fr.Element, fixtureLength)
		for i := range a {
			a[i] = new(fr.Element).SetUint64(uint64(i + 1))
			b[i] = new(fr.Element).SetUint64(uint64(2*i + 1))
		}
		P, c, proof := pgc.ProveInnerProduct(params.GVec(fixtureLength), params.HVec(fixtureLength), params.U(), a, b)
		commit := &pgc.InnerProductCommit{P: pgc.PointToJSON(P), C: c.BigInt(new(big.Int))}

		for name, v := range map[string]interface{}{
			"params.json": ipp,
			"commit.json": commit,
			"proof.json":  proof.JSON(),
		} {
			if err := pgc.WriteJSON(filepath.Join(fixtureDir, name), v); err != nil {
				return err
			}
		}
		logger.Info("ipa fixtures written", zap.String("dir", fixtureDir), zap.Int("n", fixtureLength))
		return nil
	},
}

var verifyIPACmd = &cobra.Command{
	Use:   "verify-ipa",
	Short: "Verify an inner product proof with both verifier forms",
	RunE: func(cmd *cobra.Command, args []string) error {
		var ipp pgc.InnerProductParams
		var commit pgc.InnerProductCommit
		var proof pgc.InnerProductProofJSON
		if err := pgc.LoadJSON(filepath.Join(fixtureDir, "params.json"), &ipp); err != nil {
			return err
		}
		if err := pgc.LoadJSON(filepath.Join(fixtureDir, "commit.json"), &commit); err != nil {
			return err
		}
		if err := pgc.LoadJSON(filepath.Join(fixtureDir, "proof.json"), &proof); err != nil {
			return err
		}

		var l, r pgc.GeneratorVector
		l.Vec, r.Vec = proof.L, proof.R
		results := make([]bool, 2)
		for i, optimized := range []bool{false, true} {
			ok, err := pgc.VerifyInnerProductFlat(ipp.GV.Flatten(), ipp.HV.Flatten(), commit.P.Flatten(), ipp.U.Flatten(), commit.C, l.Flatten(), r.Flatten(), proof.A, proof.B, optimized)
			if err != nil {
				return err
			}
			results[i] = ok
		}
		logger.Info("ipa verified", zap.Bool("normal", results[0]), zap.Bool("optimized", results[1]))
		if results[0] != results[1] {
			return errors.New("verifier forms disagree")
		}
		if !results[0] {
			return errors.New("proof rejected")
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	ipaFixtureCmd.Flags().StringVarP(&fixtureDir, "dir", "d", ".", "fixture directory")
	ipaFixtureCmd.Flags().IntVarP(&fixtureLength, "n", "n", 8, "vector length, a power of two")
	verifyIPACmd.Flags().StringVarP(&fixtureDir, "dir", "d", ".", "fixture directory")
}
