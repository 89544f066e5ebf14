package services

import "errors"

var (
	ErrInvalidAmount       = errors.New("le montant doit être supérieur à zéro")
	ErrOverpayment         = errors.New("le montant dépasse le crédit en cours du client")
	ErrCheckDataRequired   = errors.New("les informations du chèque sont obligatoires")
	ErrNoSalesSelected     = errors.New("aucune vente sélectionnée pour le paiement")
	ErrCreditLimitExceeded = errors.New("limite de crédit du client dépassée")
	ErrInsufficientStock   = errors.New("stock insuffisant")
	ErrWalkInCredit        = errors.New("une vente au comptoir doit être entièrement payée")
	ErrReasonRequired      = errors.New("un motif d'au moins 5 caractères est obligatoire")
	ErrEditWindowClosed    = errors.New("le délai de modification de cette vente est dépassé")
	ErrDeleteWindowClosed  = errors.New("le délai de suppression de cette vente est dépassé")
	ErrHasCreditPayments   = errors.New("des paiements de crédit sont déjà enregistrés sur cette vente")
	ErrSaleReferenced      = errors.New("des documents générés référencent cette vente")
	ErrEmptySale           = errors.New("une vente doit contenir au moins un article")
)
