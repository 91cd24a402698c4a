package livereload

import "fmt"

// Version is the generator version reported in client metadata.
// Overridden via ldflags at release build time.
var Version = "dev"

// ClientSnippet returns the JavaScript appended to the primary script
// bundle in watch mode. It connects back to the dev server, reports the
// page's metadata, and reloads on any notification.
func ClientSnippet(addr string) string {
	return fmt.Sprintf(`;(function () {
  var ws = new WebSocket("ws://%s/livereload");
  ws.onopen = function () {
    ws.send(JSON.stringify({
      url: window.location.origin,
      title: document.title,
      version: %q
    }));
  };
  ws.onmessage = function () {
    window.location.reload();
  };
})();
`, addr, Version)
}
