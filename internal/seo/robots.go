// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package seo

import "strings"

// DisallowedPaths are never crawled.
var DisallowedPaths = []string{"/admin", "/api/", "/cron/"}

// GenerateRobots renders robots.txt. With disallowAll every path is blocked
// and no sitemap is advertised, for non-production deployments.
func GenerateRobots(siteURL string, disallowAll bool) string {
	var sb strings.Builder
	sb.WriteString("User-agent: *\n")

	if disallowAll {
		sb.WriteString("Disallow: /\n")
		return sb.String()
	}

	for _, p := range DisallowedPaths {
		sb.WriteString("Disallow: " + p + "\n")
	}
	sb.WriteString("Allow: /\n")

	if siteURL != "" {
		sb.WriteString("\nSitemap: " + strings.TrimRight(siteURL, "/") + "/sitemap.xml\n")
	}
	return sb.String()
}
