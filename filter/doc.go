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

// Package filter narrows retrieved candidates to those honoring the hard
// constraints extracted from a query.
//
// Each constraint is a named step applied to the survivors of the previous
// step, so relative order is always preserved. When the steps eliminate every
// candidate the filter falls back to the best-scored input candidate rather
// than returning nothing.
package filter
