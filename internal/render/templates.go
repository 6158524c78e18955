package render

const certificateTemplate = `<div id="{{.ID}}" class="certificate-content">
<table class="form">
  <colgroup><col><col><col><col><col><col><col><col></colgroup>
  <tbody>
    <tr>
      {{with index .B "1"}}<td colspan="2" class="center block-{{.Number}}">
        <div class="label">{{.Number}}. {{.Label}}</div>
        <div class="value">{{.Value}}</div>
      </td>{{end}}
      {{with index .B "2"}}<td colspan="4" class="heading block-{{.Number}}">
        <div class="label left">{{.Number}}.</div>
        <div class="title">{{.Label}}</div>
        <div class="value">{{.Value}}</div>
      </td>{{end}}
      {{with index .B "3"}}<td colspan="2" class="block-{{.Number}}">
        <div class="label">{{.Number}}. {{.Label}}</div>
        <div class="value center">{{.Value}}</div>
      </td>{{end}}
    </tr>
    <tr>
      {{with index .B "4"}}<td colspan="6" class="block-{{.Number}}">
        <div class="label">{{.Number}}. {{.Label}}</div>
        <div class="value">{{range $i, $l := .Lines}}{{if $i}}<br>{{end}}{{$l}}{{end}}</div>
      </td>{{end}}
      {{with index .B "5"}}<td colspan="2" class="block-{{.Number}}">
        <div class="label">{{.Number}}. {{.Label}}</div>
        <div class="value">{{.Value}}</div>
      </td>{{end}}
    </tr>
    <tr class="items-header">
      {{with index .B "6"}}<th colspan="1" class="block-{{.Number}}">{{.Number}}. {{.Label}}</th>{{end}}
      {{with index .B "7"}}<th colspan="2" class="block-{{.Number}}">{{.Number}}. {{.Label}}</th>{{end}}
      {{with index .B "8"}}<th colspan="2" class="block-{{.Number}}">{{.Number}}. {{.Label}}</th>{{end}}
      {{with index .B "9"}}<th colspan="1" class="block-{{.Number}}">{{.Number}}. {{.Label}}</th>{{end}}
      {{with index .B "10"}}<th colspan="1" class="block-{{.Number}}">{{.Number}}. {{.Label}}</th>{{end}}
      {{with index .B "11"}}<th colspan="1" class="block-{{.Number}}">{{.Number}}. {{.Label}}</th>{{end}}
    </tr>
    {{range .Rows}}<tr class="item-row">
      <td colspan="1" class="center">{{.Item}}</td>
      <td colspan="2" class="center">{{.Description}}</td>
      <td colspan="2" class="center">{{.PartNumber}}</td>
      <td colspan="1" class="center">{{.Quantity}}</td>
      <td colspan="1" class="center">{{.SerialNumber}}</td>
      <td colspan="1" class="center">{{.Status}}</td>
    </tr>
    {{end}}<tr>
      {{with index .B "12"}}<td colspan="8" class="remarks block-{{.Number}}">
        <div class="label">{{.Number}}. {{.Label}}</div>
        <div class="value remarks-body">{{.Value}}</div>
      </td>{{end}}
    </tr>
    <tr>
      {{with index .B "13a"}}<td colspan="4" class="block-{{.Number}}{{if .Overlay}} signature-box{{end}}">
        <div class="label">{{.Number}}. {{.Label}}</div>
        {{range .Checks}}<div class="check"><span class="box">{{if .Checked}}&#10003;{{end}}</span><span>{{.Label}}</span></div>
        {{end}}
      </td>{{end}}
      {{with index .B "14a"}}<td colspan="4" class="block-{{.Number}}">
        <div class="checks-row"><span class="label">{{.Number}}.</span>
        {{range .Checks}}<div class="check"><span class="box">{{if .Checked}}&#10003;{{end}}</span><span>{{.Label}}</span></div>
        {{end}}</div>
        <div class="note">{{.Note}}</div>
      </td>{{end}}
    </tr>
    <tr>
      {{with index .B "13b"}}<td colspan="2" class="sign block-{{.Number}}"><div class="label">{{.Number}}. {{.Label}}</div><div class="value center">{{.Value}}</div></td>{{end}}
      {{with index .B "13c"}}<td colspan="2" class="sign block-{{.Number}}"><div class="label">{{.Number}}. {{.Label}}</div><div class="value center">{{.Value}}</div></td>{{end}}
      {{with index .B "14b"}}<td colspan="2" class="sign block-{{.Number}}"><div class="label">{{.Number}}. {{.Label}}</div><div class="value center">{{.Value}}</div></td>{{end}}
      {{with index .B "14c"}}<td colspan="2" class="sign block-{{.Number}}"><div class="label">{{.Number}}. {{.Label}}</div><div class="value center">{{.Value}}</div></td>{{end}}
    </tr>
    <tr>
      {{with index .B "13d"}}<td colspan="2" class="sign block-{{.Number}}"><div class="label">{{.Number}}. {{.Label}}</div><div class="value center">{{.Value}}</div></td>{{end}}
      {{with index .B "13e"}}<td colspan="2" class="sign block-{{.Number}}"><div class="label">{{.Number}}. {{.Label}}</div><div class="value center">{{.Value}}</div></td>{{end}}
      {{with index .B "14d"}}<td colspan="2" class="sign block-{{.Number}}"><div class="label">{{.Number}}. {{.Label}}</div><div class="value center">{{.Value}}</div></td>{{end}}
      {{with index .B "14e"}}<td colspan="2" class="sign block-{{.Number}}"><div class="label">{{.Number}}. {{.Label}}</div><div class="value center">{{.Value}}</div></td>{{end}}
    </tr>
    <tr><td colspan="8" class="center"><strong>User/Installer Responsibilities</strong></td></tr>
    <tr>
      <td colspan="8" class="responsibilities">
        It is important to understand that the existence of this document alone does not automatically
        constitute authority to install the aircraft engine/propeller/article.<br><br>
        Where the user/installer performs work in accordance with the national regulations of an
        airworthiness authority different than the airworthiness authority of the country specified in
        Block 1, it is essential that the user/installer ensures that his/her airworthiness authority
        accepts aircraft engine(s)/propeller(s)/article(s) from the airworthiness authority of the country
        specified in Block 1.<br><br>
        Statements in Blocks 13a and 14a do not constitute installation certification. In all cases,
        aircraft maintenance records must contain an installation certification issued in accordance with
        the national regulations by the user/installer before the aircraft may be flown.
      </td>
    </tr>
    <tr>
      <td colspan="8" class="no-border footer"><span>FAA Form 8130-3 (02-14)</span><span>NSN: 0052-00-012-9005</span></td>
    </tr>
  </tbody>
</table>
</div>`

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}}</title>
  <style>
    @page { size: A4 landscape; margin: 0.2mm; }
    body { font-family: Arial, 'Helvetica Neue', sans-serif; margin: 0; color: #000; }
    .certificate-content { width: 1123px; margin: 0 auto 24px; }
    .certificate-content + .certificate-content { break-before: page; page-break-before: always; }
    table.form { width: 100%; table-layout: fixed; border-collapse: collapse; }
    table.form td, table.form th { border: 1px solid #000; padding: 4px; vertical-align: top; font-size: 12px; }
    table.form th { text-align: left; font-size: 11px; }
    .label { font-size: 10px; font-weight: 700; margin-bottom: 4px; }
    .value { font-size: 13px; min-height: 14px; }
    .title { font-weight: 700; font-size: 16px; text-align: center; }
    .heading .value { text-align: center; }
    .center { text-align: center; }
    .left { text-align: left; }
    .remarks-body { min-height: 160px; line-height: 1.5; white-space: pre-wrap; }
    .check { display: flex; align-items: center; margin-bottom: 4px; font-size: 10px; }
    .box { width: 14px; height: 14px; border: 1px solid #000; margin-right: 6px; display: inline-flex; align-items: center; justify-content: center; }
    .checks-row { display: flex; gap: 16px; }
    .note { font-size: 10px; line-height: 1.2; margin-top: 6px; }
    .signature-box { background: repeating-linear-gradient(45deg, #d9d9d9 0 2px, transparent 2px 8px); }
    td.sign { height: 56px; }
    .responsibilities { font-size: 10px; font-weight: 700; }
    .no-border { border: none !important; }
    .footer { display: flex; justify-content: space-between; font-size: 9px; }
    .toolbar { padding: 12px; text-align: right; }
    @media print { .toolbar { display: none; } .certificate-content { margin: 0; } }
  </style>
</head>
<body>
{{if .Toolbar}}  <div class="toolbar"><span>{{len .Docs}} certificate(s)</span> <button type="button" onclick="window.print()">Print All</button></div>
{{end}}{{range .Docs}}{{.HTML}}
{{else}}  <p class="center">No certificates found</p>
{{end}}</body>
</html>
`
