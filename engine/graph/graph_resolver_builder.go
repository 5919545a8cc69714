package graph

import "github.com/Carmen-Shannon/framegraph-go/common"

// GraphResolverBuilderOption is a functional option for configuring a
// GraphResolver during creation.
type GraphResolverBuilderOption func(*graphResolver)

// WithMinimumExtent sets the floor applied to surface-derived draw extents.
// Derived render targets never shrink below this size, so shrinking the
// window does not force attachment reallocation. A zero extent disables the
// floor.
//
// Parameters:
//   - extent: the minimum draw extent in pixels
//
// Returns:
//   - GraphResolverBuilderOption: the option to apply
func WithMinimumExtent(extent common.Extent2D) GraphResolverBuilderOption {
	return func(r *graphResolver) {
		r.minExtent = extent
	}
}
