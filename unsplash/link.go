package unsplash

import "strings"

// ParseLinkHeader parses an RFC 5988 style pagination header into a
// rel -> URL map. Entries look like:
//
//	<https://api.unsplash.com/photos?page=3>; rel="next", <...>; rel="last"
//
// Malformed entries are skipped. The result replaces any previous pagination
// state wholesale, so an empty header yields an empty map.
func ParseLinkHeader(h string) map[string]string {
	links := map[string]string{}
	for _, entry := range strings.Split(h, ",") {
		segs := strings.Split(entry, ";")
		if len(segs) < 2 {
			continue
		}
		u := strings.TrimSpace(segs[0])
		if !strings.HasPrefix(u, "<") || !strings.HasSuffix(u, ">") {
			continue
		}
		u = strings.Trim(u, "<>")
		for _, attr := range segs[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(attr), "=")
			if !ok || strings.TrimSpace(k) != "rel" {
				continue
			}
			rel := strings.Trim(strings.TrimSpace(v), `"`)
			if rel != "" && u != "" {
				links[rel] = u
			}
		}
	}
	return links
}
