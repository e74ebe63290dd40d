package report

// MarkdownTemplate is the text/template source of the report.
const MarkdownTemplate = `# {{.Title}}

_產生時間 {{.GeneratedAt}} · {{.FundCount}} 檔 ETF{{if .NoDataCount}} · {{.NoDataCount}} 檔查無數據{{end}}_

**持股變化總計:** 🆕 新進 {{.Totals.New}} · 🔺 增加 {{.Totals.Increased}} · 🔻 減少 {{.Totals.Decreased}}{{if .Totals.Removed}} · ❌ 移出 {{.Totals.Removed}}{{end}}
{{range .Funds}}
## {{.Ticker}} {{.Name}}

| 淨值 | 週報酬 | 今年以來 | 狀態 |
| ---: | ---: | ---: | --- |
| {{.NAV}} | {{.Weekly}} | {{.YTD}} | {{.Status}} |

- **{{.LeadLabel}}:** {{.Lead}}
- **成立日期:** {{.Founded}} · **配息頻率:** {{.Dividend}} · **保管銀行:** {{.Custodian}}
{{- if .Trend}}
- **走勢:** {{.Trend}}
{{- end}}
{{if .Holdings}}
| 持股 | 權重 | 變化 |
| --- | ---: | --- |
{{range .Holdings}}| {{.Stock}} | {{.Percent}} | {{.Change}} |
{{end}}
{{- else if .Hidden}}
_持股無變化_
{{else}}
_無持股資料_
{{end}}
{{- if and .Holdings .Hidden}}
_另有 {{.Hidden}} 檔持股無變化_
{{end}}
{{- end}}`
