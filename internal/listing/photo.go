package listing

import "strings"

const photoBase = "https://photos.zillowstatic.com/fp/"

// PhotoURL expands a lead photo reference into the 800x400 webp rendition.
func PhotoURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	return photoBase + ref + "-se_large_800_400.webp"
}
