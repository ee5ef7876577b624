package letter

import "time"

func composeTexas(d *NoticeData, today time.Time) string {
	var p page
	p.sender(d)
	p.recipient(d, "CERTIFIED MAIL, RETURN RECEIPT REQUESTED")
	p.heading("NOTICE OF CLAIM FOR UNPAID LABOR OR MATERIALS AND INTENT TO FILE LIEN AFFIDAVIT (Texas Property Code Chapter 53)")
	p.blank()
	p.subject(d)
	p.linef("Dear %s:", d.Customer.Name)
	p.blank()
	p.linef("This notice is provided under Chapter 53 of the Texas Property Code. %s has furnished labor and materials for improvements to the property identified above and the balance below remains unpaid.", d.Contractor.Name)
	p.blank()
	p.work(d)
	p.amounts(d, today)
	p.heading("NOTICE TO OWNER")
	p.line("If this claim remains unpaid, you may be personally liable and your property may be subjected to a lien unless you withhold payments from the contractor for payment of the claim or the claim is otherwise paid or settled.")
	p.line("Under Section 53.052 of the Texas Property Code, a lien affidavit must be filed with the county clerk by the 15th day of the fourth month after the month in which the work was completed (third month for residential construction). If the property is a residential homestead, additional requirements under Section 53.254 apply.")
	p.blank()
	p.deadlines(d)
	p.linef("If full payment is not received by %s, %s intends to file a mechanics lien affidavit against the property on or before %s.",
		FormatDate(d.ResponseDeadline), d.Contractor.Name, FormatDate(d.LienFilingDeadline))
	p.blank()
	p.payment(d)
	p.dispute(d)
	p.line("This notice is sent by certified mail as required by Section 53.003 of the Texas Property Code.")
	p.blank()
	p.disclaimer(d)
	p.signature(d)
	return p.String()
}

//Personal.AI order the ending
