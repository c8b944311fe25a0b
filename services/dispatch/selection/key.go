// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package selection

import (
	"strconv"
	"strings"
)

// Row tuples are used as map keys, so they are flattened into a single
// string. The encoding is length-prefixed (len:value per element), which
// keeps it injective: ["ab", ""] and ["a", "b"] encode differently, and
// route values containing any would-be separator byte cannot collide.
//
// Two encodings of the same tuple back the two indexes: encodeRow preserves
// bytes exactly (ordinal policy), and encodeFoldedRow lowercases each element
// first (case-insensitive policy).

// foldValue is the case-folding applied to route values and key names for
// the case-insensitive policy.
func foldValue(s string) string {
	return strings.ToLower(s)
}

// encodeRow flattens a row tuple into an ordinal map key.
func encodeRow(row []string) string {
	var b strings.Builder
	for _, v := range row {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

// encodeFoldedRow flattens a row tuple into a case-insensitive map key.
func encodeFoldedRow(row []string) string {
	var b strings.Builder
	for _, v := range row {
		f := foldValue(v)
		b.WriteString(strconv.Itoa(len(f)))
		b.WriteByte(':')
		b.WriteString(f)
	}
	return b.String()
}
