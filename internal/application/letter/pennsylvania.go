package letter

import "time"

func composePennsylvania(d *NoticeData, today time.Time) string {
	var p page
	p.sender(d)
	p.recipient(d, "CERTIFIED MAIL, RETURN RECEIPT REQUESTED")
	p.heading("FORMAL NOTICE OF INTENTION TO FILE A MECHANICS' LIEN CLAIM (49 P.S. Section 1501)")
	p.blank()
	p.subject(d)
	p.linef("Dear %s:", d.Customer.Name)
	p.blank()
	p.linef("Pursuant to Section 501 of the Pennsylvania Mechanics' Lien Law of 1963, 49 P.S. Section 1501, %s gives you this formal written notice of its intention to file a mechanics' lien claim against the property identified above. This notice is given at least 30 days before the lien claim is filed, as the statute requires.", d.Contractor.Name)
	p.blank()
	p.work(d)
	p.amounts(d, today)
	p.heading("STATUTORY NOTICE")
	p.line("Under 49 P.S. Section 1501(b), a claimant must serve formal written notice of intention to file a claim at least 30 days before filing. Under 49 P.S. Section 1502, the claim must be filed within six months after completion of the work, and under Section 1701 an action to obtain judgment must be commenced within two years of filing.")
	p.line("A filed mechanics' lien claim becomes an encumbrance on the property and may be enforced by a writ of scire facias leading to judgment and sale of the property.")
	p.blank()
	p.deadlines(d)
	p.linef("If the amount due is not paid in full by %s, %s intends to file a mechanics' lien claim with the Prothonotary of the county in which the property is located on or before %s.",
		FormatDate(d.ResponseDeadline), d.Contractor.Name, FormatDate(d.LienFilingDeadline))
	p.blank()
	p.payment(d)
	p.dispute(d)
	p.heading("CERTIFIED MAIL DISCLOSURE")
	p.line("This notice is being served by certified mail, return receipt requested, and a copy of the return receipt will be retained as proof of service under 49 P.S. Section 1501(e).")
	p.blank()
	p.disclaimer(d)
	p.signature(d)
	return p.String()
}

//Personal.AI order the ending
