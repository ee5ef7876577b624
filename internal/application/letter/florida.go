package letter

import "time"

func composeFlorida(d *NoticeData, today time.Time) string {
	var p page
	p.sender(d)
	p.recipient(d, "CERTIFIED MAIL, RETURN RECEIPT REQUESTED")
	p.heading("NOTICE OF INTENT TO LIEN (Part I, Chapter 713, Florida Statutes)")
	p.blank()
	p.subject(d)
	p.linef("Dear %s:", d.Customer.Name)
	p.blank()
	p.linef("You are hereby notified that %s intends to record a Claim of Lien against the property identified above for the unpaid balance of the work described below, pursuant to Section 713.08, Florida Statutes.", d.Contractor.Name)
	p.blank()
	p.work(d)
	p.amounts(d, today)
	p.heading("WARNING TO OWNER")
	p.line("FLORIDA'S CONSTRUCTION LIEN LAW ALLOWS SOME UNPAID CONTRACTORS, SUBCONTRACTORS, AND MATERIAL SUPPLIERS TO FILE LIENS AGAINST YOUR PROPERTY EVEN IF YOU HAVE MADE PAYMENT IN FULL.")
	p.line("Under Section 713.08, Florida Statutes, a Claim of Lien must be recorded no later than 90 days after the final furnishing of labor, services or materials. Under Section 713.22, a lien that is not enforced by action within one year after recording is extinguished.")
	p.blank()
	p.deadlines(d)
	p.linef("Unless the full amount is paid by %s, %s will record a Claim of Lien in the official records of the county where the property is located on or before %s.",
		FormatDate(d.ResponseDeadline), d.Contractor.Name, FormatDate(d.LienFilingDeadline))
	p.blank()
	p.payment(d)
	p.dispute(d)
	p.line("This notice is being delivered by certified mail, return receipt requested, in accordance with Section 713.18, Florida Statutes.")
	p.blank()
	p.disclaimer(d)
	p.signature(d)
	return p.String()
}

//Personal.AI order the ending
