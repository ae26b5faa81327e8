package pages

import "fmt"

// GuideURL is the page of a guide.
func GuideURL(gid string) string {
	return "/app/guides/" + gid
}

func categoryURL(gid string, ci int) string {
	return fmt.Sprintf("%s/categories/%d", GuideURL(gid), ci)
}

func skillURL(gid string, ci, si int) string {
	return fmt.Sprintf("%s/skills/%d", categoryURL(gid, ci), si)
}

func itemURL(gid string, ci, si, ii int) string {
	return fmt.Sprintf("%s/items/%d", skillURL(gid, ci, si), ii)
}

func entryURL(gid, eid string) string {
	return GuideURL(gid) + "/entries/" + eid
}
