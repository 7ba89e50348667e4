package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "absolute link is kept",
			link: "https://example.com/a",
			want: "https://example.com/a",
		},
		{
			name: "relative link with leading slash",
			link: "/solutions/products/product-catalog/view/java-8-new/",
			want: "https://www.shl.com/solutions/products/product-catalog/view/java-8-new/",
		},
		{
			name: "relative link without leading slash",
			link: "products/x/",
			want: "https://www.shl.com/products/x/",
		},
		{
			name: "missing link derives slug from name",
			link: "",
			want: "https://www.shl.com/solutions/products/product-catalog/view/java-8-new/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AbsoluteURL(tt.link, "Java 8 (New)"))
		})
	}
}
