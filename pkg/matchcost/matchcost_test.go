/*
 * Copyright (c) 2024, NVIDIA CORPORATION.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package matchcost

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddScale(t *testing.T) {
	a := Cost{NC: 0.5, WC: 1, DC: 0}
	b := Cost{NC: 0.25, WC: 0, DC: 1}
	require.Equal(t, Cost{NC: 0.75, WC: 1, DC: 1}, a.Add(b))
	require.Equal(t, Cost{NC: 1.5, WC: 3, DC: 0}, a.Scale(3))
}

func TestNormalize(t *testing.T) {
	c := Cost{NC: 4, WC: 3, DC: 2}
	n := c.Normalize(4)
	require.Equal(t, Cost{NC: 1, WC: 3, DC: 2}, n)
}

func TestValueWeights(t *testing.T) {
	c := Cost{NC: 1, WC: 1, DC: 1}
	require.Equal(t, float64(2+1+4), c.DefaultValue())
}

func TestSum(t *testing.T) {
	require.Equal(t, Zero(), Sum())
	require.Equal(t, Cost{NC: 1, WC: 2, DC: 3}, Sum(Cost{NC: 1}, Cost{WC: 2}, Cost{DC: 3}))
}

func TestNonNegativeInvariant(t *testing.T) {
	c := Cost{NC: 0.5, WC: 2, DC: 1}
	require.GreaterOrEqual(t, c.DefaultValue(), float64(0))
}
