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

// Package provider provides shared helpers for the indexer backend clients
package provider

import "context"

// PageFetchFunc fetches a single page of results. The cursor argument is
// the cursor from the previous response (empty for the first page). It
// returns the page, the cursor for the next page (empty when the result
// set is exhausted), and any error
type PageFetchFunc[T any] func(
	ctx context.Context,
	cursor string,
) (T, string, error)

// FetchPage walks a chain of cursor-linked responses until it reaches the
// target page (1-based) and returns that page's response. Each call's
// cursor depends on the previous response, so the walk is inherently
// serial. If the cursor chain ends before the target page is reached, the
// last available response is returned
func FetchPage[T any](
	ctx context.Context,
	page int,
	fetch PageFetchFunc[T],
) (T, error) {
	if page < 1 {
		page = 1
	}
	var cursor string
	for i := 1; ; i++ {
		result, nextCursor, err := fetch(ctx, cursor)
		if err != nil {
			var zero T
			return zero, err
		}
		if i >= page || nextCursor == "" {
			return result, nil
		}
		cursor = nextCursor
	}
}
