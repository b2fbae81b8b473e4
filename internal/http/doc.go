// Package http serves the server-rendered booking site.
//
// The router exposes the following pages:
//   - GET /: service catalog with the booking lookup form. A booking_id query
//     parameter performs the same lookup as POST /search.
//   - POST /search: looks a booking up by numeric id and re-renders the index
//     with the service label and stay dates, or an inline error.
//   - GET, POST /register and GET, POST /login: account creation and sign-in.
//     A successful login stores the opaque session token in a signed cookie
//     and returns to the local `next` path.
//   - GET /logout: invalidates the session. Requires a signed-in user.
//   - GET, POST /book/{serviceID}: booking form and submission. Success flashes
//     a confirmation and redirects to /details/{id}.
//   - GET /details/{id}: booking details page.
//   - GET /my_bookings: bookings stored under the signed-in user's email.
//   - GET, POST /admin, GET, POST /admin/edit/{id}, POST /admin/delete/{id},
//     GET /admin/export.csv: administrator booking management.
//   - GET /healthz, GET /readyz, GET /metrics: operational endpoints.
//
// Form and view types live beside the handlers that use them; templates are
// embedded from the templates directory.
package http
