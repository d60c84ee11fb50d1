/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package query

// PageResult is a filtered, sorted and paginated view of a collection.
type PageResult struct {
	Items      Collection `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
}

// Opts represents options for Process.
type Opts struct {
	// MaxLimit is an endpoint-specific page size cap. It is applied on top of the global MaxLimit,
	// so the served limit never exceeds the tighter of the two. Zero means no extra cap.
	MaxLimit int
}

// Process filters, sorts and paginates the collection according to the params.
func Process(collection Collection, params Params, opts Opts) PageResult {
	pg := ParsePaginationWithCap(params, opts.MaxLimit)
	filtered := FilterAndSort(collection, params)
	return PageResult{
		Items:      Paginate(filtered, pg.Page, pg.Limit),
		Total:      len(filtered),
		Page:       pg.Page,
		Limit:      pg.Limit,
		TotalPages: TotalPages(len(filtered), pg.Limit),
	}
}
