package pwa

import (
	"bytes"
	"fmt"
	"text/template"
)

const cacheNamePrefix = "tic-tracker-cache-v"

// CacheName 返回指定版本的缓存名。
func CacheName(version int) string {
	if version <= 0 {
		version = 1
	}
	return fmt.Sprintf("%s%d", cacheNamePrefix, version)
}

// PageURLs 是服务端渲染、内容随数据变化的页面，只走网络优先。
func PageURLs() []string {
	return []string{"/", "/add", "/stats"}
}

// ShellURLs 是安装时预缓存的静态外壳，不含动态页面。
func ShellURLs() []string {
	urls := []string{
		"/static/app.css",
		"/static/app.js",
		"/manifest.json",
	}
	for _, size := range IconSizes {
		urls = append(urls, IconPath(size, false))
	}
	return append(urls, IconPath(512, true))
}

var serviceWorkerTemplate = template.Must(template.New("sw").Parse(`const CACHE_NAME = {{ printf "%q" .CacheName }};
const CACHE_PREFIX = {{ printf "%q" .Prefix }};
const urlsToCache = [
{{- range .URLs }}
  {{ printf "%q" . }},
{{- end }}
];

self.addEventListener('install', event => {
  event.waitUntil(
    caches.open(CACHE_NAME).then(cache => cache.addAll(urlsToCache))
  );
  self.skipWaiting();
});

self.addEventListener('activate', event => {
  event.waitUntil(
    caches.keys().then(names => Promise.all(
      names
        .filter(name => name.startsWith(CACHE_PREFIX) && name !== CACHE_NAME)
        .map(name => caches.delete(name))
    ))
  );
  self.clients.claim();
});

self.addEventListener('fetch', event => {
  if (event.request.method !== 'GET') {
    return;
  }
  const url = new URL(event.request.url);
  if (url.origin !== self.location.origin || url.pathname.startsWith('/api/')) {
    return;
  }
  if (event.request.mode === 'navigate') {
    event.respondWith(
      fetch(event.request)
        .then(response => {
          if (response.ok) {
            const copy = response.clone();
            caches.open(CACHE_NAME).then(cache => cache.put(event.request, copy));
          }
          return response;
        })
        .catch(() => caches.match(event.request))
    );
    return;
  }
  event.respondWith(
    caches.match(event.request).then(response => response || fetch(event.request))
  );
});
`))

// ServiceWorker 生成 service worker 脚本：静态资源 cache-first，页面导航 network-first 并以缓存兜底离线。
func ServiceWorker(version int) ([]byte, error) {
	var buf bytes.Buffer
	err := serviceWorkerTemplate.Execute(&buf, struct {
		CacheName string
		Prefix    string
		URLs      []string
	}{
		CacheName: CacheName(version),
		Prefix:    cacheNamePrefix,
		URLs:      ShellURLs(),
	})
	if err != nil {
		return nil, fmt.Errorf("render service worker: %w", err)
	}
	return buf.Bytes(), nil
}
