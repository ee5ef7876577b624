package letter

import "time"

func composeCalifornia(d *NoticeData, today time.Time) string {
	var p page
	p.sender(d)
	p.recipient(d, "CERTIFIED MAIL, RETURN RECEIPT REQUESTED")
	p.heading("NOTICE OF INTENT TO RECORD A MECHANICS LIEN (California Civil Code Sections 8400-8494)")
	p.blank()
	p.subject(d)
	p.linef("Dear %s:", d.Customer.Name)
	p.blank()
	p.linef("%s furnished labor, services, equipment or materials for the work of improvement at the property identified above and has not been paid in full. This notice is given before recording a mechanics lien under California Civil Code Section 8400 et seq.", d.Contractor.Name)
	p.blank()
	p.work(d)
	p.amounts(d, today)
	p.heading("NOTICE TO PROPERTY OWNER")
	p.line("If bills are not paid in full for the labor, services, equipment, or materials furnished or to be furnished, a mechanics lien leading to the loss, through court foreclosure proceedings, of all or part of your property being so improved may be placed against the property even though you have paid your contractor in full.")
	p.line("Under Civil Code Section 8412 a claim of lien must be recorded within 90 days after completion of the work of improvement, and under Section 8460 an action to foreclose the lien must be commenced within 90 days after recordation.")
	p.blank()
	p.deadlines(d)
	p.linef("Unless payment in full is received by %s, %s intends to record a mechanics lien with the county recorder on or before %s.",
		FormatDate(d.ResponseDeadline), d.Contractor.Name, FormatDate(d.LienFilingDeadline))
	p.blank()
	p.payment(d)
	p.dispute(d)
	p.line("This notice is being sent by certified mail, return receipt requested, to preserve proof of delivery.")
	if d.Contractor.LicenseNumber != "" {
		p.linef("Contractors are required by law to be licensed and regulated by the Contractors State License Board. %s holds CSLB license number %s.", d.Contractor.Name, d.Contractor.LicenseNumber)
	}
	p.blank()
	p.disclaimer(d)
	p.signature(d)
	return p.String()
}

//Personal.AI order the ending
