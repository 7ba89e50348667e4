// Copyright 2025 Poiesic Systems
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


package core

import "strings"

const (
	catalogSiteRoot    = "https://www.shl.com/"
	catalogProductRoot = "https://www.shl.com/solutions/products/product-catalog/view/"
)

// AbsoluteURL turns a catalog link into an absolute product URL.
// Relative links are resolved against the catalog site; a missing link is
// replaced by the product page derived from the assessment name.
func AbsoluteURL(link, name string) string {
	link = strings.TrimSpace(link)
	switch {
	case link == "":
		slug := strings.ToLower(strings.TrimSpace(name))
		slug = strings.NewReplacer(" ", "-", "(", "", ")", "").Replace(slug)
		return catalogProductRoot + slug + "/"
	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return link
	default:
		return catalogSiteRoot + strings.TrimLeft(link, "/")
	}
}
