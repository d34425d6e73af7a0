package rest

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Tic-tac-toe</title>
</head>
<body>
<table>
{{- range .Rows}}
<tr>
{{- range .}}
<td><form method="post" action="/cell/{{.Row}}/{{.Col}}"><button type="submit">{{.Symbol}}</button></form></td>
{{- end}}
</tr>
{{- end}}
<tr>
<td><form method="post" action="/reset"><button type="submit">reset</button></form></td>
<td colspan="2">{{if .Message}}{{.Message}}{{else}}&nbsp;{{end}}</td>
</tr>
</table>
</body>
</html>
`))
