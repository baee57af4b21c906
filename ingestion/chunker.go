// Copyright 2026 Poiesic Systems
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


package ingestion

import "strings"

// boundaryMarkers lists chunk cut points in preference order: paragraph
// breaks first, then line breaks, then sentence terminators (CJK and ASCII).
var boundaryMarkers = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune("。"),
	[]rune("！"),
	[]rune("？"),
	[]rune("."),
	[]rune("!"),
	[]rune("?"),
}

// SplitText splits text into overlapping windows of up to chunkSize runes,
// preferring to cut just after a paragraph, line, or sentence boundary.
// Sizes are measured in runes so multi-byte scripts chunk evenly.
//
// Each window after the first starts at max(previousStart+1, cut-overlap).
// The max(previousStart+1, ...) rule guarantees forward progress even when
// overlap >= chunkSize, so the loop always terminates.
//
// Whitespace-only windows are dropped. Empty text yields a nil slice.
func SplitText(text string, chunkSize, overlap int) []string {
	if chunkSize < 1 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)
	total := len(runes)
	if total == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < total {
		end := start + chunkSize
		if end >= total {
			end = total
		} else if cut := findBoundary(runes, start, end); cut > start {
			end = cut
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= total {
			break
		}

		next := end - overlap
		if next < start+1 {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// findBoundary searches backward from end for the nearest boundary marker,
// trying each marker in preference order. It returns the position just after
// the marker, or -1 when no marker ends past start.
func findBoundary(runes []rune, start, end int) int {
	for _, marker := range boundaryMarkers {
		m := len(marker)
		for i := end - m; i >= 0 && i+m > start; i-- {
			if runesEqual(runes[i:i+m], marker) {
				return i + m
			}
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
