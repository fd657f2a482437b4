package cellar

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/cellar/date"
	"github.com/sirupsen/logrus"
)

// diskCache implements a simple disk cache for HTTP responses
type diskCache struct {
	base http.RoundTripper
	dir  string
	log  logrus.FieldLogger
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// diskcache implements a unique key per day, so the local tmp expires every day.
	key := fmt.Sprintf("%s %s %s", date.Today().String(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		c.log.WithField("url", req.URL.String()).Debug("ledger served from cache")
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{"method": resp.Request.Method, "host": resp.Request.URL.Host, "path": resp.Request.URL.Path}).Info(resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	// otherwise attempt to store it in cache
	if err := c.put(key, resp); err != nil {
		c.log.WithError(err).Warn("cache write failed (ignored)")
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0644)
}

// daily returns a client with a disk cache that expires every day.
func daily(log logrus.FieldLogger) *http.Client {
	return &http.Client{Transport: &diskCache{base: http.DefaultTransport, dir: os.TempDir(), log: log}}
}

// OpenExternalLedger reads the external ledger from a local file or from an
// http(s) URL. Downloads are cached on disk for the day.
func OpenExternalLedger(src string, log logrus.FieldLogger) ([]ExternalEntry, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	var r io.Reader
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		resp, err := daily(log).Get(src)
		if err != nil {
			return nil, fmt.Errorf("cannot download ledger: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
		}
		r = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("cannot open ledger: %w", err)
		}
		defer f.Close()
		r = f
	}

	entries, err := DecodeExternalLedger(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	log.WithField("entries", len(entries)).Debugf("read ledger %s", src)
	return entries, nil
}
