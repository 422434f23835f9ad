// Package toolver detects and compares tool version strings.
//
// snpEff versions are not semantic versions: releases carry single-letter
// suffixes ("5.2d", "5.2f"). Compare therefore splits on dots and orders
// each segment by numeric prefix first, then by the remaining suffix
// lexicographically. This fixes the lexicographic quirk of plain string
// comparison where "5.10" sorted below "5.2".
package toolver

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

// Compare orders two dot-separated version strings.
// Returns -1 if a < b, 0 if equal, +1 if a > b.
//
// Each segment is split into a leading numeric part and a trailing suffix:
// "2d" -> (2, "d"). Numeric parts compare as integers (a missing segment
// counts as 0), suffixes compare lexicographically, and a bare segment
// orders before the same segment with a suffix ("5.2" < "5.2d").
func Compare(a, b string) int {
	as := strings.Split(strings.TrimSpace(a), ".")
	bs := strings.Split(strings.TrimSpace(b), ".")

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		var sa, sb string
		if i < len(as) {
			sa = as[i]
		}
		if i < len(bs) {
			sb = bs[i]
		}
		na, ra := splitSegment(sa)
		nb, rb := splitSegment(sb)
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
		if ra != rb {
			if ra < rb {
				return -1
			}
			return 1
		}
	}
	return 0
}

// AtLeast reports whether version v is >= min under Compare ordering.
func AtLeast(v, min string) bool {
	return Compare(v, min) >= 0
}

// splitSegment splits "2d" into (2, "d"). A segment with no digits has
// numeric value 0 and the whole segment as suffix.
func splitSegment(s string) (int, string) {
	i := 0
	for i < len(s) && unicode.IsDigit(rune(s[i])) {
		i++
	}
	num := 0
	if i > 0 {
		num, _ = strconv.Atoi(s[:i])
	}
	return num, s[i:]
}

// DetectSnpEff runs snpEff's -version banner through the given Java runtime
// and returns the parsed version string.
//
// The banner looks like "SnpEff\t5.2f\t2024-01-10"; the version is the
// first whitespace-separated token that starts with a digit.
func DetectSnpEff(ctx context.Context, javaHome, snpeffHome string) (string, error) {
	javaBin := filepath.Join(javaHome, "bin", "java")
	jar := filepath.Join(snpeffHome, "snpEff.jar")

	out, err := exec.CommandContext(ctx, javaBin, "-jar", jar, "-version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("running %s -jar %s -version: %w", javaBin, jar, err)
	}
	v := ParseSnpEffBanner(string(out))
	if v == "" {
		return "", fmt.Errorf("could not parse snpEff version from output: %q", strings.TrimSpace(string(out)))
	}
	return v, nil
}

// ParseSnpEffBanner extracts the version token from snpEff -version output.
// Returns "" when no token looks like a version.
func ParseSnpEffBanner(out string) string {
	for _, field := range strings.Fields(out) {
		if field != "" && field[0] >= '0' && field[0] <= '9' {
			return field
		}
	}
	return ""
}
