// Package intake serves the intake QC workflow over HTTP: the resource index,
// filtered record lists, the detail form with multipart submission, and token
// sign-in. Pages render through the html renderer, or as JSON with
// ?format=json.
package intake
