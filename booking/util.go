package booking

import(
	"sort"
	"strings"

	"github.com/skypies/flytau"
)

func dedupe(ids []string) []string {
	seen := map[string]bool{}
	ret := []string{}
	for _,id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] { continue }
		seen[id] = true
		ret = append(ret, id)
	}
	return ret
}

func sortRefs(refs []flytau.ResourceRef) {
	sort.Slice(refs, func(i,j int) bool { return refs[i].String() < refs[j].String() })
}
