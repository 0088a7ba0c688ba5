// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "sort"

// medianTimePastWindow is the number of trailing blocks whose timestamps
// are considered (spec §4.6 "median time past"). Fewer are used near
// genesis, where the first 11 blocks take the median of whatever exists.
const medianTimePastWindow = 11

// medianTimePast walks back from tipHeight, fetching up to
// medianTimePastWindow block timestamps (inclusive of tipHeight), and
// returns their median. With an even count (only possible within the
// first medianTimePastWindow blocks of the chain) the upper of the two
// middle values is used.
func (c *Chain) medianTimePast(tipHeight uint32) (uint32, error) {
	timestamps := make([]uint32, 0, medianTimePastWindow)

	height := tipHeight
	for i := 0; i < medianTimePastWindow; i++ {
		hash, err := c.store.GetHashAt(height)
		if err != nil {
			return 0, err
		}
		if hash == nil {
			break
		}
		block, err := c.store.GetBlock(*hash)
		if err != nil {
			return 0, err
		}
		if block == nil {
			break
		}
		timestamps = append(timestamps, block.Header.Timestamp)

		if height == 0 {
			break
		}
		height--
	}

	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })
	return timestamps[len(timestamps)/2], nil
}
