package email

const subjectNewLeadFmt = "Novo lead %s: %s"
