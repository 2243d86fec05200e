package digest

import "sort"

// Group buckets files by category and orders each bucket by importance,
// high first. Files of equal importance keep their input order.
func Group(files []EnhancedFileDiff) CategorizedFiles {
	grouped := make(CategorizedFiles)
	for _, file := range files {
		grouped[file.Category] = append(grouped[file.Category], file)
	}

	for _, bucket := range grouped {
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Importance < bucket[j].Importance
		})
	}

	return grouped
}
