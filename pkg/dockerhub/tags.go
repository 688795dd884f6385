package dockerhub

import "github.com/lodthe/fromcheck/pkg/versionscheme"

// Tags converts registry tags into the version scheme input,
// keeping the registry order.
func Tags(items []ImageTag) []versionscheme.Tag {
	tags := make([]versionscheme.Tag, 0, len(items))
	for _, it := range items {
		tags = append(tags, versionscheme.Tag{
			Name:        it.Name,
			LastUpdated: it.LastUpdated,
		})
	}

	return tags
}
