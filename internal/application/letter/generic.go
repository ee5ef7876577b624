package letter

import "time"

func composeGeneric(d *NoticeData, today time.Time) string {
	var p page
	p.sender(d)
	p.recipient(d, "")
	p.heading("NOTICE OF INTENT TO FILE A MECHANICS LIEN")
	p.blank()
	p.subject(d)
	p.linef("Dear %s:", d.Customer.Name)
	p.blank()
	p.linef("This letter is formal notice that %s intends to file a mechanics lien against the property identified above if the balance described below is not paid.", d.Contractor.Name)
	p.blank()
	p.work(d)
	p.amounts(d, today)
	p.heading("WHAT A LIEN MEANS FOR YOUR PROPERTY")
	p.line("Under state law, contractors who improve real property and are not paid may record a mechanics lien against that property. A recorded lien is a public claim against your title. It can prevent you from selling or refinancing the property until it is released, and it may be enforced through a court action that can lead to a forced sale of the property.")
	p.blank()
	p.deadlines(d)
	p.linef("To avoid a lien, payment in full must be received by %s. If payment is not received by that date, we intend to record a lien on or before %s, the last day permitted under state law.",
		FormatDate(d.ResponseDeadline), FormatDate(d.LienFilingDeadline))
	p.blank()
	p.payment(d)
	p.dispute(d)
	p.disclaimer(d)
	p.line("This letter is not legal advice. Lien requirements differ from state to state; you may wish to consult an attorney about your rights.")
	p.blank()
	p.signature(d)
	return p.String()
}

//Personal.AI order the ending
