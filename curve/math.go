package curve

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/nilecore/soulcore/fixedpoint"
)

const (
	// ReserveRatioPPM is the Bancor reserve ratio in parts-per-million, r ≈ 1/3.
	ReserveRatioPPM = 333_333
	// PPM is the parts-per-million scaling base.
	PPM = 1_000_000
)

var (
	reserveRatioPPM = uint256.NewInt(ReserveRatioPPM)
	ppm             = uint256.NewInt(PPM)
	// exponentBuy is r expressed in wad, used as CalcBuy's exponent.
	exponentBuy, _ = fixedpoint.DivWad(reserveRatioPPM, ppm)
	// exponentSell is 1/r expressed in wad, used as CalcSell's exponent.
	exponentSell, _ = fixedpoint.DivWad(ppm, reserveRatioPPM)
)

func toUint256(v *big.Int) *uint256.Int {
	if v == nil || v.Sign() <= 0 {
		return uint256.NewInt(0)
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return new(uint256.Int).Not(uint256.NewInt(0))
	}
	return u
}

// CalcBuy implements the Bancor buy formula:
// supply · ((1 + v/reserve)^r − 1), returning 0 if either operand is zero.
func CalcBuy(supply, reserve, v *big.Int) (*big.Int, error) {
	supplyU, reserveU, vU := toUint256(supply), toUint256(reserve), toUint256(v)
	if reserveU.IsZero() || vU.IsZero() {
		return big.NewInt(0), nil
	}
	x, err := fixedpoint.DivWad(vU, reserveU)
	if err != nil {
		return nil, err
	}
	pow, err := fixedpoint.PowApprox(x, exponentBuy)
	if err != nil {
		return nil, err
	}
	delta := subClampedU(pow, fixedpoint.Wad)
	tokensOut, err := fixedpoint.MulWad(supplyU, delta)
	if err != nil {
		return nil, err
	}
	return tokensOut.ToBig(), nil
}

// CalcSell implements the Bancor sell formula:
// reserve · (1 − (1 − t/supply)^(1/r)), saturating at reserve.
func CalcSell(supply, reserve, tokenAmount *big.Int) (*big.Int, error) {
	supplyU, reserveU, tU := toUint256(supply), toUint256(reserve), toUint256(tokenAmount)
	if supplyU.IsZero() || tU.IsZero() {
		return big.NewInt(0), nil
	}
	u, err := fixedpoint.DivWad(tU, supplyU)
	if err != nil {
		return nil, err
	}
	pow, err := fixedpoint.PowApproxComplement(u, exponentSell)
	if err != nil {
		return nil, err
	}
	delta := subClampedU(fixedpoint.Wad, pow)
	coinOut, err := fixedpoint.MulWad(reserveU, delta)
	if err != nil {
		return nil, err
	}
	if coinOut.Cmp(reserveU) > 0 {
		coinOut = reserveU
	}
	return coinOut.ToBig(), nil
}

// CurrentPrice returns the instantaneous marginal price, coin-per-token in wad:
// reserve · PPM / (supply · RESERVE_RATIO / 1e18).
func CurrentPrice(supply, reserve *big.Int) (*big.Int, error) {
	supplyU, reserveU := toUint256(supply), toUint256(reserve)
	if supplyU.IsZero() {
		return big.NewInt(0), nil
	}
	ratio, err := fixedpoint.DivWad(reserveU, supplyU)
	if err != nil {
		return nil, err
	}
	price, err := fixedpoint.MulWad(ratio, exponentSell)
	if err != nil {
		return nil, err
	}
	return price.ToBig(), nil
}

func subClampedU(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) < 0 {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Sub(a, b)
}
