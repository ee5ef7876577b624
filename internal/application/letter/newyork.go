package letter

import "time"

func composeNewYork(d *NoticeData, today time.Time) string {
	var p page
	p.sender(d)
	p.recipient(d, "CERTIFIED MAIL, RETURN RECEIPT REQUESTED")
	p.heading("NOTICE OF INTENT TO FILE A NOTICE OF MECHANIC'S LIEN (New York Lien Law Article 2)")
	p.blank()
	p.subject(d)
	p.linef("Dear %s:", d.Customer.Name)
	p.blank()
	p.linef("%s performed labor and furnished materials for the improvement of the real property identified above. This letter notifies you that, absent payment, %s will file a Notice of Mechanic's Lien under Section 10 of the New York Lien Law.", d.Contractor.Name, d.Contractor.Name)
	p.blank()
	p.work(d)
	p.amounts(d, today)
	p.heading("EFFECT OF A MECHANIC'S LIEN")
	p.line("Under Lien Law Section 10, a notice of lien may be filed at any time during the improvement and within eight months after the completion of the contract or the final furnishing of labor or materials (four months for a single-family dwelling). Under Section 11 the lienor must serve a copy of the notice on the owner. Under Section 17 the lien remains in effect for one year after filing and may be enforced by foreclosure.")
	p.blank()
	p.deadlines(d)
	p.linef("If the balance is not paid by %s, %s will file the Notice of Mechanic's Lien with the county clerk on or before %s.",
		FormatDate(d.ResponseDeadline), d.Contractor.Name, FormatDate(d.LienFilingDeadline))
	p.blank()
	p.payment(d)
	p.dispute(d)
	p.line("This notice is sent by certified mail, return receipt requested.")
	p.blank()
	p.disclaimer(d)
	p.signature(d)
	return p.String()
}

//Personal.AI order the ending
