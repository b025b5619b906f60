package storage

import (
	"crypto/rand"
	"math/big"
	"path"
	"strconv"
	"strings"
	"time"
)

// DefaultFolder receives uploads that do not name a folder.
const DefaultFolder = "uploads"

const keyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateFileKey builds "{folder}/{unixMillis}-{random}.{ext}" for an
// uploaded file. The extension comes from the original name.
func GenerateFileKey(originalName, folder string) string {
	return generateFileKey(originalName, folder, time.Now())
}

func generateFileKey(originalName, folder string, now time.Time) string {
	return CleanFolder(folder) + "/" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + randomToken(13) + "." + extension(originalName)
}

// CleanFolder reduces folder to safe path segments, or DefaultFolder.
func CleanFolder(folder string) string {
	var parts []string
	for _, seg := range strings.Split(strings.ReplaceAll(folder, "\\", "/"), "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" || seg == "." || seg == ".." || !safeSegment(seg) {
			continue
		}
		parts = append(parts, seg)
	}
	if len(parts) == 0 {
		return DefaultFolder
	}
	return strings.Join(parts, "/")
}

func extension(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(strings.TrimSpace(name)), "."))
	if ext == "" || len(ext) > 10 || !safeSegment(ext) {
		return "bin"
	}
	return ext
}

func safeSegment(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func randomToken(n int) string {
	max := big.NewInt(int64(len(keyAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			buf[i] = keyAlphabet[time.Now().UnixNano()%int64(len(keyAlphabet))]
			continue
		}
		buf[i] = keyAlphabet[v.Int64()]
	}
	return string(buf)
}

// PublicURL joins the public base URL and key.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURL strips base from raw. ok is false when raw is not under base.
func KeyFromURL(base, raw string) (string, bool) {
	base = strings.TrimRight(base, "/")
	if base == "" || !strings.HasPrefix(raw, base+"/") {
		return "", false
	}
	key := strings.TrimPrefix(raw, base+"/")
	return key, key != ""
}
