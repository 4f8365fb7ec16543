package view

// script reports pointer-downs and breakpoint changes to the server. Each
// pointer-down sends the ids of the elements under the pointer; the page
// reloads when the server reports a state change.
const script = `
(function () {
  function post(url, body, type) {
    return fetch(url, {
      method: "POST",
      credentials: "same-origin",
      headers: { "Content-Type": type },
      body: body
    }).then(function (r) { return r.ok ? r.json() : { changed: false }; });
  }

  document.addEventListener("pointerdown", function (e) {
    var targets = [];
    for (var n = e.target; n && n !== document; n = n.parentNode) {
      if (n.id) { targets.push(n.id); }
    }
    var body = JSON.stringify({ x: e.clientX, y: e.clientY, targets: targets });
    post("/ui/pointer", body, "application/json").then(function (res) {
      if (res.changed) { window.location.reload(); }
    });
  });

  var mq = window.matchMedia("(max-width: 767px)");
  function report() {
    var body = "mobile=" + mq.matches + "&return=" + encodeURIComponent(window.location.pathname);
    post("/ui/sidebar/viewport", body, "application/x-www-form-urlencoded").then(function (res) {
      if (res.changed) { window.location.reload(); }
    });
  }
  mq.addEventListener("change", report);
  if (document.body.dataset.mobile !== String(mq.matches)) { report(); }
})();
`
