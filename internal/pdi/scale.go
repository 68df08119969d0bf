package pdi

import (
	"fmt"
	"math/big"

	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/shopspring/decimal"
)

// ScaleAndType turns the extracted bits of a field into its published value.
//
// Integer and enumerated encodings are scaled as raw*scalingFactor + scalingOffset in
// decimal arithmetic, so a factor of 0.1 applied to 417 gives exactly 41.7.
// Boolean encodings are never scaled. inRange is false when a declared bound is violated.
func ScaleAndType(raw uint64, field types.ProcessDataField) (any, bool, error) {
	sc := field.Output
	if !field.Encoding.Valid() {
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownEncoding, field.Encoding)
	}
	if !field.Encoding.Compatible(sc.Type) {
		return nil, false, fmt.Errorf("%w: %s encoding as %q", ErrTypeMismatch, field.Encoding, sc.Type)
	}

	switch field.Encoding {
	case types.EncodingBoolean:
		b := raw != 0
		if sc.Type == types.SemanticNumber {
			n := 0.0
			if b {
				n = 1
			}
			return n, inRange(decimal.NewFromFloat(n), field), nil
		}
		return b, true, nil

	case types.EncodingEnumerated:
		if sc.Type == types.SemanticString {
			name, ok := LookupState(field.States, raw)
			if !ok {
				name = unknownStatus(raw)
			}
			return name, true, nil
		}
		v := scale(decimal.NewFromBigInt(new(big.Int).SetUint64(raw), 0), field)
		v, ok := clampRange(v, field)
		return v.InexactFloat64(), ok, nil

	case types.EncodingSigned:
		v := scale(decimal.NewFromInt(signExtend(raw, field.BitWidth)), field)
		v, ok := clampRange(v, field)
		return typed(v, sc.Type), ok, nil

	default:
		v := scale(decimal.NewFromBigInt(new(big.Int).SetUint64(raw), 0), field)
		v, ok := clampRange(v, field)
		return typed(v, sc.Type), ok, nil
	}
}

func scale(v decimal.Decimal, field types.ProcessDataField) decimal.Decimal {
	sc := field.Output
	factor := decimal.NewFromFloat(sc.ScalingFactor)
	if sc.ScalingFactor == 0 {
		factor = decimal.NewFromInt(1)
	}
	v = v.Mul(factor).Add(decimal.NewFromFloat(sc.ScalingOffset))
	if sc.Decimals != nil {
		v = v.Round(*sc.Decimals)
	}
	return v
}

func typed(v decimal.Decimal, t types.SemanticType) any {
	if t == types.SemanticString {
		return v.String()
	}
	return v.InexactFloat64()
}

func inRange(v decimal.Decimal, field types.ProcessDataField) bool {
	if field.MinValue != nil && v.LessThan(decimal.NewFromFloat(*field.MinValue)) {
		return false
	}
	if field.MaxValue != nil && v.GreaterThan(decimal.NewFromFloat(*field.MaxValue)) {
		return false
	}
	return true
}

// clampRange checks the declared bounds and, for fields configured to clamp,
// pins the value to the violated bound. The returned flag still reports the violation.
func clampRange(v decimal.Decimal, field types.ProcessDataField) (decimal.Decimal, bool) {
	if inRange(v, field) {
		return v, true
	}
	if !field.Clamp {
		return v, false
	}
	if field.MinValue != nil && v.LessThan(decimal.NewFromFloat(*field.MinValue)) {
		return decimal.NewFromFloat(*field.MinValue), false
	}
	return decimal.NewFromFloat(*field.MaxValue), false
}
