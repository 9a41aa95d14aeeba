// Package indicators provides a library of technical indicator functions
// for use in rule expressions. The functions are ordinary numeric
// callables registered into the engine through the name to callable
// contract; the engine core has no knowledge of them.
package indicators

import (
	"fmt"
	"math"

	"github.com/deepnoodle-ai/quantexpr/errz"
	"github.com/deepnoodle-ai/quantexpr/object"
)

// Builtins returns the full indicator function registry, keyed by the
// names used in expressions.
func Builtins() map[string]object.BuiltinFunc {
	return map[string]object.BuiltinFunc{
		"sma":             SMA,
		"ema":             EMA,
		"rsi":             RSI,
		"macd":            MACD,
		"momentum":        Momentum,
		"roc":             ROC,
		"stddev":          StdDev,
		"bollinger_bands": BollingerBands,
		"max_drawdown":    MaxDrawdown,
		"obv":             OBV,
	}
}

// SMA computes the simple moving average of the last period prices.
// Arguments: (prices, period).
func SMA(args []object.Object) (object.Object, error) {
	prices, period, err := seriesAndPeriod("sma", args)
	if err != nil {
		return nil, err
	}
	if len(prices) < period {
		return nil, fmt.Errorf("sma: not enough data points (%d < %d)", len(prices), period)
	}
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return object.NewFloat(sum / float64(period)), nil
}

// EMA computes an exponential moving average over the whole series with a
// smoothing factor of 2/(period+1). Arguments: (prices, period).
func EMA(args []object.Object) (object.Object, error) {
	prices, period, err := seriesAndPeriod("ema", args)
	if err != nil {
		return nil, err
	}
	if len(prices) < period {
		return nil, fmt.Errorf("ema: not enough data points (%d < %d)", len(prices), period)
	}
	return object.NewFloat(ema(prices, period)), nil
}

func ema(prices []float64, period int) float64 {
	k := 2.0 / (float64(period) + 1.0)
	result := prices[0]
	for _, p := range prices[1:] {
		result = p*k + result*(1.0-k)
	}
	return result
}

// RSI computes the relative strength index over the first period price
// changes. Arguments: (prices, period).
func RSI(args []object.Object) (object.Object, error) {
	prices, period, err := seriesAndPeriod("rsi", args)
	if err != nil {
		return nil, err
	}
	if len(prices) < period+1 {
		return nil, fmt.Errorf("rsi: not enough data points (%d < %d)", len(prices), period+1)
	}
	gains := 0.0
	losses := 0.0
	for i := 1; i <= period; i++ {
		diff := prices[i] - prices[i-1]
		if diff > 0 {
			gains += diff
		} else {
			losses -= diff
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return object.NewFloat(100), nil
	}
	return object.NewFloat(100.0 - (100.0 / (1.0 + avgGain/avgLoss))), nil
}

// MACD computes the difference between a short and a long exponential
// moving average. Arguments: (prices, short_period, long_period).
func MACD(args []object.Object) (object.Object, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("macd: takes 3 arguments (got %d)", len(args))
	}
	prices, err := argFloats("macd", args, 0)
	if err != nil {
		return nil, err
	}
	short, err := argPeriod("macd", args, 1)
	if err != nil {
		return nil, err
	}
	long, err := argPeriod("macd", args, 2)
	if err != nil {
		return nil, err
	}
	if len(prices) < long {
		return nil, fmt.Errorf("macd: not enough data points (%d < %d)", len(prices), long)
	}
	return object.NewFloat(ema(prices, short) - ema(prices, long)), nil
}

// Momentum computes the difference between the last price and the price
// period steps earlier. Arguments: (prices, period).
func Momentum(args []object.Object) (object.Object, error) {
	prices, period, err := seriesAndPeriod("momentum", args)
	if err != nil {
		return nil, err
	}
	if len(prices) <= period {
		return nil, fmt.Errorf("momentum: not enough data points (%d <= %d)", len(prices), period)
	}
	return object.NewFloat(prices[len(prices)-1] - prices[len(prices)-period-1]), nil
}

// ROC computes the rate of change between the last price and the price
// period steps earlier, as a percentage. Arguments: (prices, period).
func ROC(args []object.Object) (object.Object, error) {
	prices, period, err := seriesAndPeriod("roc", args)
	if err != nil {
		return nil, err
	}
	if len(prices) <= period {
		return nil, fmt.Errorf("roc: not enough data points (%d <= %d)", len(prices), period)
	}
	base := prices[len(prices)-period-1]
	if base == 0 {
		return nil, fmt.Errorf("roc: reference price is zero")
	}
	return object.NewFloat((prices[len(prices)-1] - base) / base * 100.0), nil
}

// StdDev computes the population standard deviation of the whole series.
// Arguments: (prices).
func StdDev(args []object.Object) (object.Object, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("stddev: takes 1 argument (got %d)", len(args))
	}
	prices, err := argFloats("stddev", args, 0)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return object.NewFloat(0), nil
	}
	return object.NewFloat(stddev(prices)), nil
}

func stddev(values []float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// BollingerBands computes the upper, middle, and lower bands over the last
// period prices and returns them as a map with keys "upper_band",
// "middle_band", and "lower_band". Arguments: (prices, period, multiplier).
func BollingerBands(args []object.Object) (object.Object, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("bollinger_bands: takes 3 arguments (got %d)", len(args))
	}
	prices, err := argFloats("bollinger_bands", args, 0)
	if err != nil {
		return nil, err
	}
	period, err := argPeriod("bollinger_bands", args, 1)
	if err != nil {
		return nil, err
	}
	multiplier, err := argFloat("bollinger_bands", args, 2)
	if err != nil {
		return nil, err
	}
	if len(prices) < period {
		return nil, fmt.Errorf("bollinger_bands: not enough data points (%d < %d)", len(prices), period)
	}
	window := prices[len(prices)-period:]
	middle := 0.0
	for _, p := range window {
		middle += p
	}
	middle /= float64(period)
	sd := stddev(window)
	return object.NewMap(map[string]object.Object{
		"upper_band":  object.NewFloat(middle + multiplier*sd),
		"middle_band": object.NewFloat(middle),
		"lower_band":  object.NewFloat(middle - multiplier*sd),
	}), nil
}

// MaxDrawdown computes the largest peak-to-trough decline of the series,
// as a fraction of the peak. Arguments: (prices).
func MaxDrawdown(args []object.Object) (object.Object, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("max_drawdown: takes 1 argument (got %d)", len(args))
	}
	prices, err := argFloats("max_drawdown", args, 0)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return object.NewFloat(0), nil
	}
	peak := prices[0]
	maxDrawdown := 0.0
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			drawdown := (peak - p) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}
	return object.NewFloat(maxDrawdown), nil
}

// OBV computes on-balance volume: volume is added on up days and
// subtracted on down days. Arguments: (prices, volumes).
func OBV(args []object.Object) (object.Object, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("obv: takes 2 arguments (got %d)", len(args))
	}
	prices, err := argFloats("obv", args, 0)
	if err != nil {
		return nil, err
	}
	volumes, err := argFloats("obv", args, 1)
	if err != nil {
		return nil, err
	}
	if len(prices) != len(volumes) {
		return nil, fmt.Errorf("obv: prices and volumes must have the same length")
	}
	obv := 0.0
	for i := 1; i < len(prices); i++ {
		switch {
		case prices[i] > prices[i-1]:
			obv += volumes[i]
		case prices[i] < prices[i-1]:
			obv -= volumes[i]
		}
	}
	return object.NewFloat(obv), nil
}

func seriesAndPeriod(name string, args []object.Object) ([]float64, int, error) {
	if len(args) != 2 {
		return nil, 0, fmt.Errorf("%s: takes 2 arguments (got %d)", name, len(args))
	}
	prices, err := argFloats(name, args, 0)
	if err != nil {
		return nil, 0, err
	}
	period, err := argPeriod(name, args, 1)
	if err != nil {
		return nil, 0, err
	}
	return prices, period, nil
}

func argFloats(name string, args []object.Object, index int) ([]float64, error) {
	s, ok := args[index].(*object.FloatSlice)
	if !ok {
		return nil, errz.TypeErrorf("%s: argument %d must be a float array (got %s)",
			name, index+1, args[index].Type())
	}
	return s.Value(), nil
}

func argFloat(name string, args []object.Object, index int) (float64, error) {
	v, err := object.AsFloat(args[index])
	if err != nil {
		return 0, errz.TypeErrorf("%s: argument %d must be a number (got %s)",
			name, index+1, args[index].Type())
	}
	return v, nil
}

func argPeriod(name string, args []object.Object, index int) (int, error) {
	v, err := argFloat(name, args, index)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s: period must be a positive number", name)
	}
	return int(v), nil
}
