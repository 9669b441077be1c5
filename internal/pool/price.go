// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pool

import "math"

// Price holds the decimal-adjusted directional price ratios for a pool
type Price struct {
	PoolId string `json:"poolId"`
	// PriceXY is the price of X in terms of Y (Y per X)
	PriceXY float64 `json:"priceXY"`
	// PriceYX is the price of Y in terms of X (X per Y)
	PriceYX   float64 `json:"priceYX"`
	DecimalsX uint32  `json:"decimalsX"`
	DecimalsY uint32  `json:"decimalsY"`
}

// RelativePrices computes the decimal-adjusted price ratios between two
// reserves. Each reserve is divided by 10^decimals before taking the
// ratio; the two returned ratios are reciprocals of each other
func RelativePrices(
	reserveX uint64,
	decimalsX uint32,
	reserveY uint64,
	decimalsY uint32,
) (priceXY float64, priceYX float64) {
	adjustedX := float64(reserveX) / math.Pow10(int(decimalsX))
	adjustedY := float64(reserveY) / math.Pow10(int(decimalsY))
	if adjustedX != 0 {
		priceXY = adjustedY / adjustedX
	}
	if adjustedY != 0 {
		priceYX = adjustedX / adjustedY
	}
	return priceXY, priceYX
}
