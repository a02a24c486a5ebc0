package web

import (
	"html/template"
	"strings"

	"github.com/absarsolarch/ab-3/internal/domain"
)

type listingData struct {
	Properties []domain.Property
	Connected  bool
	Message    string
	Error      string
	Endpoint   string
}

// formatPrice renders a decimal price string as "RM 450,000.00".
func formatPrice(price string) string {
	whole, frac, found := strings.Cut(price, ".")
	if !found {
		frac = "00"
	} else if len(frac) == 1 {
		frac += "0"
	}
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return "RM " + b.String() + "." + frac
}

func statusBadge(status string) string {
	switch status {
	case domain.StatusAvailable:
		return "badge-available"
	case domain.StatusSold:
		return "badge-sold"
	default:
		return "badge-contract"
	}
}

// deref unwraps optional counts for display; templates print pointers as
// addresses otherwise.
func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

var listingTemplate = template.Must(template.New("listing").Funcs(template.FuncMap{
	"formatPrice": formatPrice,
	"statusBadge": statusBadge,
	"deref":       deref,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Anycompany Properties Sdn Bhd - Property Management</title>
<style>
body { font-family: sans-serif; margin: 0; background: #f4f5f7; }
.navbar { background: #2c3e50; color: #fff; padding: 15px 30px; font-size: 1.3em; }
.container { max-width: 960px; margin: 20px auto; padding: 0 15px; }
.alert { padding: 12px; border-radius: 4px; margin-bottom: 15px; }
.alert-success { background: #d4edda; color: #155724; }
.alert-danger { background: #f8d7da; color: #721c24; }
.alert-warning { background: #fff3cd; color: #856404; }
.card { background: #fff; border-radius: 5px; box-shadow: 0 2px 5px rgba(0,0,0,0.1); padding: 20px; margin-bottom: 20px; position: relative; }
.price { font-size: 1.4em; color: #e74c3c; font-weight: bold; }
.badge { position: absolute; top: 12px; right: 12px; padding: 4px 10px; border-radius: 3px; color: #fff; font-size: 0.8em; }
.badge-available { background: #27ae60; }
.badge-contract { background: #f39c12; }
.badge-sold { background: #c0392b; }
.features span { margin-right: 15px; color: #2c3e50; }
form.inline { display: inline-block; margin-right: 8px; }
input, select, textarea { margin: 4px 0; padding: 6px; width: 100%; box-sizing: border-box; }
button { background: #e74c3c; color: #fff; border: none; padding: 8px 16px; border-radius: 3px; cursor: pointer; }
</style>
</head>
<body>
<nav class="navbar">Anycompany Properties Sdn Bhd</nav>
<div class="container">
{{if .Message}}<div class="alert alert-success">{{.Message}}</div>{{end}}
{{if .Error}}<div class="alert alert-danger">{{.Error}}</div>{{end}}
{{if not .Connected}}
<div class="alert alert-warning"><strong>Note:</strong> Unable to connect to the application tier or database. Property listings are unavailable.</div>
{{end}}

<h2>Listings</h2>
{{if .Properties}}
{{range .Properties}}
<div class="card">
	<span class="badge {{statusBadge .Status}}">{{.Status}}</span>
	<h3>{{.Title}}</h3>
	<div class="price">{{formatPrice .Price}}</div>
	<div class="features">
		<span>{{.PropertyType}}</span>
		<span>{{.SizeSqft}} sqft</span>
		{{if .Bedrooms}}<span>{{deref .Bedrooms}} bed</span>{{end}}
		{{if .Bathrooms}}<span>{{deref .Bathrooms}} bath</span>{{end}}
		<span>{{.Location}}</span>
	</div>
	{{if .Description}}<p>{{.Description}}</p>{{end}}
	<form class="inline" method="POST" action="{{$.Endpoint}}/">
		<input type="hidden" name="action" value="update">
		<input type="hidden" name="id" value="{{.ID}}">
		<select name="status">
			<option>Available</option>
			<option>Under Contract</option>
			<option>Sold</option>
		</select>
		<button type="submit">Update Status</button>
	</form>
	<form class="inline" method="POST" action="{{$.Endpoint}}/">
		<input type="hidden" name="action" value="delete">
		<input type="hidden" name="id" value="{{.ID}}">
		<button type="submit">Remove</button>
	</form>
</div>
{{end}}
{{else}}
<p>No properties listed yet.</p>
{{end}}

<h2>List a Property</h2>
<div class="card">
	<form method="POST" action="{{.Endpoint}}/">
		<input type="hidden" name="action" value="create">
		<input name="title" placeholder="Title" required maxlength="200">
		<input name="property_type" placeholder="Property type" required maxlength="50">
		<input name="price" placeholder="Price" required>
		<input name="size_sqft" placeholder="Size (sqft)" required>
		<input name="bedrooms" placeholder="Bedrooms (optional)">
		<input name="bathrooms" placeholder="Bathrooms (optional)">
		<input name="location" placeholder="Location" required maxlength="200">
		<select name="status">
			<option>Available</option>
			<option>Under Contract</option>
			<option>Sold</option>
		</select>
		<textarea name="description" placeholder="Description (optional)"></textarea>
		<button type="submit">List Property</button>
	</form>
</div>
</div>
</body>
</html>
`))
