package notify

// Carrier email-to-SMS gateways. The table is static: gateway domains change
// rarely and misconfiguring one at runtime would silently kill the SMS
// channel of last resort.
type gateway struct {
	carrier string // "" for carrier-agnostic backup gateways
	domain  string
}

// carrierGateways are tried in this fixed enumeration order when no carrier
// hint is given.
var carrierGateways = []gateway{
	{carrier: "telstra", domain: "onlinesms.telstra.com"},
	{carrier: "optus", domain: "optusmobile.com.au"},
	{carrier: "vodafone", domain: "sms.vodafone.net.au"},
}

// backupGateways are carrier-agnostic relay services.
var backupGateways = []gateway{
	{domain: "email2sms.directsms.com.au"},
	{domain: "relay.smscentral.com.au"},
}

// gatewayOrder returns the gateway trial order for a carrier hint.
//
// A known hint puts that carrier first, then the backups, then the remaining
// carriers. An absent or "auto" hint tries every carrier gateway in
// enumeration order followed by the backups.
func gatewayOrder(carrierHint string) []gateway {
	known := false
	if carrierHint != "" && carrierHint != "auto" {
		for _, gw := range carrierGateways {
			if gw.carrier == carrierHint {
				known = true
				break
			}
		}
	}

	out := make([]gateway, 0, len(carrierGateways)+len(backupGateways))
	if !known {
		out = append(out, carrierGateways...)
		return append(out, backupGateways...)
	}

	for _, gw := range carrierGateways {
		if gw.carrier == carrierHint {
			out = append(out, gw)
		}
	}
	out = append(out, backupGateways...)
	for _, gw := range carrierGateways {
		if gw.carrier != carrierHint {
			out = append(out, gw)
		}
	}
	return out
}
