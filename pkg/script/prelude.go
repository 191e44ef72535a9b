package script

// prelude is evaluated before every script.
const prelude = `
var Response = (function () {
  function make(status) {
    return function (body, headers) {
      return { status: status, headers: headers || {}, body: body };
    };
  }
  function redirect(status) {
    return function (url, headers) {
      var h = headers || {};
      h.Location = url;
      return { status: status, headers: h };
    };
  }
  return Object.freeze({
    ok: make(200),
    created: make(201),
    accepted: make(202),
    badRequest: make(400),
    unauthorized: make(401),
    unauthorised: make(401),
    forbidden: make(403),
    notFound: make(404),
    notAcceptable: make(406),
    tooManyRequests: make(429),
    internalServerError: make(500),
    movedPermanently: redirect(301),
    temporaryRedirect: redirect(307),
    permanentRedirect: redirect(308),
    status: function (status, body, headers) {
      return make(status)(body, headers);
    }
  });
})();

function __deepFreeze(o) {
  if (o !== null && typeof o === "object" && !Object.isFrozen(o)) {
    Object.freeze(o);
    Object.keys(o).forEach(function (k) { __deepFreeze(o[k]); });
  }
  return o;
}
`
