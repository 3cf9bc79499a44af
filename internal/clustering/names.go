package clustering

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mattear-com/deepshelf/internal/domain"
)

var titleCaser = cases.Title(language.English)

// NameClusters derives a descriptive label for each of the k clusters from
// the dominant genre among its members. Frequency ties resolve by the
// genre encountered first, so labels are deterministic for a fixed catalog
// order.
func NameClusters(books []domain.Book, assign []int, k int) map[int]string {
	labels := make(map[int]string, k)

	for id := 0; id < k; id++ {
		counts := make(map[string]int)
		var order []string
		members := 0

		for pos, c := range assign {
			if c != id || pos >= len(books) {
				continue
			}
			members++
			for _, g := range books[pos].GenreList() {
				key := strings.ToLower(g)
				if _, seen := counts[key]; !seen {
					order = append(order, key)
				}
				counts[key]++
			}
		}

		switch {
		case members == 0:
			labels[id] = fmt.Sprintf("Empty Cluster %d", id)
		case len(order) == 0:
			labels[id] = fmt.Sprintf("Miscellaneous Cluster %d", id)
		default:
			top := order[0]
			for _, g := range order {
				if counts[g] > counts[top] {
					top = g
				}
			}
			labels[id] = titleCaser.String(top) + " Collection"
		}
	}

	return labels
}
