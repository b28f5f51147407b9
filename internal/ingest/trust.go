package ingest

import (
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Trust-boundary helpers for the retrieval transport. The extraction
// engine treats every byte as untrusted data; these functions are the
// contract the transport must satisfy before bytes ever reach it.

var refMetaPattern = regexp.MustCompile("[;&|`$()<>]")

// SanitizeRef validates a URL or ref that will be interpolated into a
// retrieval command. Shell metacharacters are rejected outright, only
// http(s) schemes are accepted for URLs, and clone targets that resolve
// to loopback, private or link-local addresses are refused so a hostile
// URL cannot point retrieval at internal infrastructure.
func SanitizeRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("empty ref")
	}
	if refMetaPattern.MatchString(ref) {
		return fmt.Errorf("ref %q contains shell metacharacters", ref)
	}
	if strings.Contains(ref, "://") {
		if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
			return fmt.Errorf("ref %q uses a disallowed scheme", ref)
		}
		u, err := url.Parse(ref)
		if err != nil {
			return fmt.Errorf("ref %q is not a valid url: %w", ref, err)
		}
		if err := checkPublicHost(u.Hostname()); err != nil {
			return fmt.Errorf("ref %q: %w", ref, err)
		}
	}
	return nil
}

// checkPublicHost rejects hosts that are, or resolve to, non-public
// addresses. A hostname that does not resolve at all is left for the
// transport to fail on; the check here is about hosts that resolve
// somewhere we must not fetch from.
func checkPublicHost(host string) error {
	if host == "" {
		return fmt.Errorf("missing host")
	}

	ips := []net.IP{}
	if ip := net.ParseIP(host); ip != nil {
		ips = append(ips, ip)
	} else if resolved, err := net.LookupIP(host); err == nil {
		ips = resolved
	}

	for _, ip := range ips {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
			ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return fmt.Errorf("host %s resolves to non-public address %s", host, ip)
		}
	}
	return nil
}

// HardenTree strips execute permission from every file under root and
// normalizes directories to traversable-only. Retrieved third-party trees
// must never contain anything the host could accidentally run.
func HardenTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		mode := os.FileMode(0o644)
		if d.IsDir() {
			mode = 0o755
		}
		if chmodErr := os.Chmod(path, mode); chmodErr != nil {
			return fmt.Errorf("harden %s: %w", path, chmodErr)
		}
		return nil
	})
}
